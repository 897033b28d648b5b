package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

type syncRunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSyncRunRepository creates a new sync run repository
func NewSyncRunRepository(db *sql.DB, logger *zap.Logger) *syncRunRepository {
	return &syncRunRepository{
		db:     db,
		logger: logger,
	}
}

func (r *syncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO sync_runs (
			id, sync_type, status, items_processed, items_created, items_updated,
			items_failed, error_messages, started_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = domain.SyncStatusStarted
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.SyncType,
		run.Status,
		run.ItemsProcessed,
		run.ItemsCreated,
		run.ItemsUpdated,
		run.ItemsFailed,
		pq.Array(run.ErrorMessages),
		run.StartedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create sync run", zap.Error(err))
		return err
	}

	return nil
}

func (r *syncRunRepository) Finish(ctx context.Context, run *domain.SyncRun) error {
	query := `
		UPDATE sync_runs
		SET status = $2, items_processed = $3, items_created = $4,
			items_updated = $5, items_failed = $6, error_messages = $7,
			completed_at = $8, duration_ms = $9
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.ItemsProcessed,
		run.ItemsCreated,
		run.ItemsUpdated,
		run.ItemsFailed,
		pq.Array(run.ErrorMessages),
		run.CompletedAt,
		run.DurationMs,
	)

	if err != nil {
		r.logger.Error("Failed to finish sync run", zap.Error(err))
		return err
	}

	return nil
}

const syncRunColumns = `
	id, sync_type, status, items_processed, items_created, items_updated,
	items_failed, error_messages, started_at, completed_at, duration_ms
`

func (r *syncRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE id = $1`

	run, err := scanSyncRun(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "sync_run", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get sync run", zap.Error(err))
		return nil, err
	}

	return run, nil
}

func (r *syncRunRepository) List(ctx context.Context, limit, offset int) ([]*domain.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs ORDER BY started_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list sync runs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func scanSyncRun(scan func(dest ...interface{}) error) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var completedAt sql.NullTime
	var durationMs sql.NullInt64

	err := scan(
		&run.ID,
		&run.SyncType,
		&run.Status,
		&run.ItemsProcessed,
		&run.ItemsCreated,
		&run.ItemsUpdated,
		&run.ItemsFailed,
		pq.Array(&run.ErrorMessages),
		&run.StartedAt,
		&completedAt,
		&durationMs,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if durationMs.Valid {
		run.DurationMs = &durationMs.Int64
	}

	return &run, nil
}
