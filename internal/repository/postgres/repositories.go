package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/repository"
)

// NewRepositories creates all repositories backed by the given database
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Product: NewProductRepository(db, logger),
		Order:   NewOrderRepository(db, logger),
		SyncRun: NewSyncRunRepository(db, logger),
	}
}
