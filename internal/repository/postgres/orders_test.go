package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

func newOrderRepoMock(t *testing.T) (*orderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderRepository(db, zap.NewNop()), mock
}

func TestClaimSubmissionWinsWhenUnclaimed(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND external_order_id IS NULL`)).
		WithArgs(id, "CJ-1", "CJ-NUM-1", string(domain.OrderStatusProcessing), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.ClaimSubmission(context.Background(), id, "CJ-1", "CJ-NUM-1", time.Now())
	require.NoError(t, err)
	assert.True(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimSubmissionLosesWhenAlreadyClaimed(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	id := uuid.New()

	// Zero rows affected: another writer already set the external id.
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND external_order_id IS NULL`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.ClaimSubmission(context.Background(), id, "CJ-2", "CJ-NUM-2", time.Now())
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestUpdateTrackingPassesNilForAbsentFields(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	id := uuid.New()
	trackingNumber := "TRACK-9"

	// nil args reach COALESCE and preserve the stored values.
	mock.ExpectExec(regexp.QuoteMeta(`tracking_number = COALESCE($2, tracking_number)`)).
		WithArgs(id, &trackingNumber, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateTracking(context.Background(), id, &trackingNumber, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDScansNullableFields(t *testing.T) {
	repo, mock := newOrderRepoMock(t)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "order_number", "status", "customer_name", "customer_email",
		"customer_phone", "shipping_address", "total", "external_order_id",
		"external_order_number", "tracking_number", "carrier_name",
		"failure_reason", "submitted_at", "shipped_at", "delivered_at",
		"created_at", "updated_at",
	}).AddRow(
		id, "ORD-1", "pending", "Dana Lee", nil,
		nil, []byte(`{"city":"Portland"}`), 23.2, nil,
		nil, nil, nil,
		nil, nil, nil, nil,
		now, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(rows)

	order, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Nil(t, order.ExternalOrderID)
	assert.Nil(t, order.TrackingNumber)
	assert.Equal(t, "Portland", order.ShippingAddress["city"])
}

func TestGetByOrderNumberNotFound(t *testing.T) {
	repo, mock := newOrderRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE order_number = $1`)).
		WithArgs("ORD-404").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByOrderNumber(context.Background(), "ORD-404")
	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ORD-404", notFound.ID)
}
