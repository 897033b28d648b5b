package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/config"
	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/internal/repository"
	"github.com/glowmart/cjfulfill/internal/service"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

// SyncRunResponse represents a sync run in API responses
type SyncRunResponse struct {
	ID             string            `json:"id"`
	SyncType       string            `json:"sync_type"`
	Status         domain.SyncStatus `json:"status"`
	ItemsProcessed int               `json:"items_processed"`
	ItemsCreated   int               `json:"items_created"`
	ItemsUpdated   int               `json:"items_updated"`
	ItemsFailed    int               `json:"items_failed"`
	ErrorMessages  []string          `json:"error_messages,omitempty"`
	StartedAt      string            `json:"started_at"`
	CompletedAt    *string           `json:"completed_at,omitempty"`
	DurationMs     *int64            `json:"duration_ms,omitempty"`
}

func toSyncRunResponse(run *domain.SyncRun) SyncRunResponse {
	resp := SyncRunResponse{
		ID:             run.ID.String(),
		SyncType:       run.SyncType,
		Status:         run.Status,
		ItemsProcessed: run.ItemsProcessed,
		ItemsCreated:   run.ItemsCreated,
		ItemsUpdated:   run.ItemsUpdated,
		ItemsFailed:    run.ItemsFailed,
		ErrorMessages:  run.ErrorMessages,
		StartedAt:      run.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		DurationMs:     run.DurationMs,
	}
	if run.CompletedAt != nil {
		completedAt := run.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.CompletedAt = &completedAt
	}
	return resp
}

// HandleTriggerSync handles POST /v1/sync/products
func HandleTriggerSync(cfg *config.Config, client service.SupplierClient, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts service.SyncOptions
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&opts); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
				return
			}
		}

		engine := service.NewProductSyncEngine(client, repos, cfg, logger)
		run, err := engine.SyncProducts(c.Request.Context(), opts)
		if err != nil {
			if run == nil {
				logger.Error("Failed to start sync run", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			// The run itself is the operator-facing failure report.
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    err.Error(),
				"sync_run": toSyncRunResponse(run),
			})
			return
		}

		c.JSON(http.StatusOK, toSyncRunResponse(run))
	}
}

// HandleListSyncRuns handles GET /v1/sync/runs
func HandleListSyncRuns(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		runs, err := repos.SyncRun.List(c.Request.Context(), limit, offset)
		if err != nil {
			logger.Error("Failed to list sync runs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]SyncRunResponse, len(runs))
		for i, run := range runs {
			responses[i] = toSyncRunResponse(run)
		}

		c.JSON(http.StatusOK, gin.H{"sync_runs": responses})
	}
}

// HandleGetSyncRun handles GET /v1/sync/runs/:id
func HandleGetSyncRun(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		runID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sync run ID"})
			return
		}

		run, err := repos.SyncRun.GetByID(c.Request.Context(), runID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "sync run not found"})
				return
			}
			logger.Error("Failed to get sync run", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, toSyncRunResponse(run))
	}
}
