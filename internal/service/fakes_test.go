package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glowmart/cjfulfill/internal/cj"
	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/internal/repository"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

type fakeSupplier struct {
	listFn   func(ctx context.Context, q cj.ProductQuery) (*cj.ProductPage, error)
	createFn func(ctx context.Context, req cj.CreateOrderRequest) (*cj.CreateOrderResult, error)
	statusFn func(ctx context.Context, orderNum string) (*cj.OrderStatusResult, error)

	listCalls   int
	createCalls int
	statusCalls int
}

func (f *fakeSupplier) ListProducts(ctx context.Context, q cj.ProductQuery) (*cj.ProductPage, error) {
	f.listCalls++
	return f.listFn(ctx, q)
}

func (f *fakeSupplier) CreateOrder(ctx context.Context, req cj.CreateOrderRequest) (*cj.CreateOrderResult, error) {
	f.createCalls++
	return f.createFn(ctx, req)
}

func (f *fakeSupplier) GetOrderStatus(ctx context.Context, orderNum string) (*cj.OrderStatusResult, error) {
	f.statusCalls++
	return f.statusFn(ctx, orderNum)
}

type fakeProductRepo struct {
	products  map[string]*domain.Product // keyed by external product id
	upsertErr func(p *domain.Product) error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*domain.Product)}
}

func (f *fakeProductRepo) Upsert(ctx context.Context, product *domain.Product) (bool, error) {
	if f.upsertErr != nil {
		if err := f.upsertErr(product); err != nil {
			return false, err
		}
	}
	key := *product.ExternalProductID
	_, existed := f.products[key]
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[key] = product
	return !existed, nil
}

func (f *fakeProductRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Product, error) {
	if p, ok := f.products[externalID]; ok {
		return p, nil
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: externalID}
}

func (f *fakeProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, p := range f.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
}

func (f *fakeProductRepo) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

type trackingWrite struct {
	trackingNumber *string
	carrierName    *string
	shippedAt      *time.Time
	deliveredAt    *time.Time
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID][]*domain.OrderItem

	claimCalls     int
	failedReasons  []string
	statusWrites   []domain.OrderStatus
	trackingWrites []trackingWrite
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uuid.UUID]*domain.Order),
		items:  make(map[uuid.UUID][]*domain.OrderItem),
	}
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (f *fakeOrderRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: orderNumber}
}

func (f *fakeOrderRepo) ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) ClaimSubmission(ctx context.Context, id uuid.UUID, externalOrderID, externalOrderNumber string, submittedAt time.Time) (bool, error) {
	f.claimCalls++
	order, ok := f.orders[id]
	if !ok {
		return false, fmt.Errorf("order %s not found", id)
	}
	if order.ExternalOrderID != nil {
		return false, nil
	}
	order.ExternalOrderID = &externalOrderID
	order.ExternalOrderNumber = &externalOrderNumber
	order.Status = domain.OrderStatusProcessing
	order.SubmittedAt = &submittedAt
	return true, nil
}

func (f *fakeOrderRepo) MarkSubmissionFailed(ctx context.Context, id uuid.UUID, reason string) error {
	f.failedReasons = append(f.failedReasons, reason)
	if order, ok := f.orders[id]; ok {
		order.Status = domain.OrderStatusFailed
		order.FailureReason = &reason
	}
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	f.statusWrites = append(f.statusWrites, status)
	if order, ok := f.orders[id]; ok {
		order.Status = status
	}
	return nil
}

func (f *fakeOrderRepo) UpdateTracking(ctx context.Context, id uuid.UUID, trackingNumber, carrierName *string, shippedAt, deliveredAt *time.Time) error {
	f.trackingWrites = append(f.trackingWrites, trackingWrite{trackingNumber, carrierName, shippedAt, deliveredAt})
	order, ok := f.orders[id]
	if !ok {
		return fmt.Errorf("order %s not found", id)
	}
	if trackingNumber != nil {
		order.TrackingNumber = trackingNumber
	}
	if carrierName != nil {
		order.CarrierName = carrierName
	}
	if shippedAt != nil {
		order.ShippedAt = shippedAt
	}
	if deliveredAt != nil {
		order.DeliveredAt = deliveredAt
	}
	return nil
}

type fakeSyncRunRepo struct {
	created  []*domain.SyncRun
	finished []*domain.SyncRun
}

func (f *fakeSyncRunRepo) Create(ctx context.Context, run *domain.SyncRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	f.created = append(f.created, run)
	return nil
}

func (f *fakeSyncRunRepo) Finish(ctx context.Context, run *domain.SyncRun) error {
	f.finished = append(f.finished, run)
	return nil
}

func (f *fakeSyncRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncRun, error) {
	for _, run := range f.created {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "sync_run", ID: id.String()}
}

func (f *fakeSyncRunRepo) List(ctx context.Context, limit, offset int) ([]*domain.SyncRun, error) {
	return f.created, nil
}

func newFakeRepos() (*repository.Repositories, *fakeProductRepo, *fakeOrderRepo, *fakeSyncRunRepo) {
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	runs := &fakeSyncRunRepo{}
	return &repository.Repositories{
		Product: products,
		Order:   orders,
		SyncRun: runs,
	}, products, orders, runs
}
