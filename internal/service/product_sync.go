package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/cj"
	"github.com/glowmart/cjfulfill/internal/config"
	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/internal/repository"
)

const (
	defaultPageSize = 20
	defaultMaxPages = 5

	syncTypeProducts = "products"
)

type productSyncEngine struct {
	client  SupplierClient
	repos   *repository.Repositories
	pricing config.PricingConfig
	country string
	logger  *zap.Logger
	now     func() time.Time
}

// NewProductSyncEngine creates the catalog sync engine
func NewProductSyncEngine(client SupplierClient, repos *repository.Repositories, cfg *config.Config, logger *zap.Logger) *productSyncEngine {
	return &productSyncEngine{
		client:  client,
		repos:   repos,
		pricing: cfg.Pricing,
		country: cfg.CJ.CountryCode,
		logger:  logger,
		now:     time.Now,
	}
}

// SyncProducts traverses the supplier catalog page by page and upserts each
// product into the local store. Per-item failures are recorded on the run
// and do not abort it; a failed listing call aborts the run as failed. The
// returned SyncRun is finalized on every exit path.
func (e *productSyncEngine) SyncProducts(ctx context.Context, opts SyncOptions) (*domain.SyncRun, error) {
	if opts.StartPage <= 0 {
		opts.StartPage = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}

	run := &domain.SyncRun{
		SyncType:  syncTypeProducts,
		Status:    domain.SyncStatusStarted,
		StartedAt: e.now(),
	}
	if err := e.repos.SyncRun.Create(ctx, run); err != nil {
		return nil, err
	}

	e.logger.Info("Starting product sync",
		zap.String("run_id", run.ID.String()),
		zap.String("keyword", opts.Keyword),
		zap.String("category_id", opts.CategoryID),
		zap.Int("start_page", opts.StartPage),
		zap.Int("page_size", opts.PageSize),
		zap.Int("max_pages", opts.MaxPages),
	)

	// A panic below must not leave the run stuck at started: finalize it as
	// failed, then let the panic continue to the caller's recovery.
	defer func() {
		if r := recover(); r != nil {
			e.finalize(ctx, run, fmt.Errorf("panic during sync: %v", r))
			panic(r)
		}
	}()

	runErr := e.traverse(ctx, run, opts)
	e.finalize(ctx, run, runErr)

	return run, runErr
}

// finalize stamps the run with its terminal status, completion time and
// duration, and persists it.
func (e *productSyncEngine) finalize(ctx context.Context, run *domain.SyncRun, runErr error) {
	switch {
	case runErr != nil:
		run.Status = domain.SyncStatusFailed
		run.ErrorMessages = append(run.ErrorMessages, runErr.Error())
	case run.ItemsFailed > 0:
		run.Status = domain.SyncStatusPartial
	default:
		run.Status = domain.SyncStatusSuccess
	}

	completedAt := e.now()
	durationMs := completedAt.Sub(run.StartedAt).Milliseconds()
	run.CompletedAt = &completedAt
	run.DurationMs = &durationMs

	if err := e.repos.SyncRun.Finish(ctx, run); err != nil {
		e.logger.Error("Failed to finalize sync run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}

	e.logger.Info("Product sync finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", string(run.Status)),
		zap.Int("processed", run.ItemsProcessed),
		zap.Int("created", run.ItemsCreated),
		zap.Int("updated", run.ItemsUpdated),
		zap.Int("failed", run.ItemsFailed),
		zap.Int64("duration_ms", durationMs),
	)
}

// traverse runs the sequential page loop. Pagination state depends on the
// prior page's response, so pages are never fetched concurrently.
func (e *productSyncEngine) traverse(ctx context.Context, run *domain.SyncRun, opts SyncOptions) error {
	page := opts.StartPage
	lastPage := opts.StartPage + opts.MaxPages - 1

	for {
		result, err := e.client.ListProducts(ctx, cj.ProductQuery{
			Keyword:     opts.Keyword,
			CategoryID:  opts.CategoryID,
			PageNum:     page,
			PageSize:    opts.PageSize,
			MinPrice:    opts.MinPrice,
			MaxPrice:    opts.MaxPrice,
			CountryCode: e.country,
		})
		if err != nil {
			return fmt.Errorf("product listing page %d: %w", page, err)
		}

		for _, remote := range result.List {
			run.ItemsProcessed++

			product, err := e.mapSupplierProduct(remote)
			if err != nil {
				run.ItemsFailed++
				run.ErrorMessages = append(run.ErrorMessages, fmt.Sprintf("product %s: %v", remote.PID, err))
				e.logger.Warn("Skipping malformed supplier product", zap.String("pid", remote.PID), zap.Error(err))
				continue
			}

			inserted, err := e.repos.Product.Upsert(ctx, product)
			if err != nil {
				run.ItemsFailed++
				run.ErrorMessages = append(run.ErrorMessages, fmt.Sprintf("product %s: upsert failed: %v", remote.PID, err))
				e.logger.Warn("Failed to upsert product", zap.String("pid", remote.PID), zap.Error(err))
				continue
			}

			if inserted {
				run.ItemsCreated++
			} else {
				run.ItemsUpdated++
			}
		}

		totalPages := (result.Total + opts.PageSize - 1) / opts.PageSize
		if page >= totalPages || page >= lastPage {
			return nil
		}
		page++
	}
}

// mapSupplierProduct maps a remote product into a local upsert payload.
func (e *productSyncEngine) mapSupplierProduct(remote cj.SupplierProduct) (*domain.Product, error) {
	if remote.PID == "" {
		return nil, fmt.Errorf("missing external product id")
	}
	if remote.SKU == "" {
		return nil, fmt.Errorf("missing sku")
	}

	externalID := remote.PID
	product := &domain.Product{
		SKU:               remote.SKU,
		Name:              remote.Name,
		Description:       remote.Description,
		BasePrice:         remote.SellPrice,
		DisplayPrice:      remote.SellPrice * e.pricing.MarginMultiplier,
		Stock:             remote.Stock,
		Images:            remote.Images,
		ExternalProductID: &externalID,
		IsActive:          true,
	}

	if remote.CategoryID != "" {
		categoryID := remote.CategoryID
		product.CategoryID = &categoryID
	}
	if remote.CategoryName != "" {
		categoryName := remote.CategoryName
		product.CategoryName = &categoryName
	}

	product.Variants = make([]domain.ProductVariant, 0, len(remote.Variants))
	for _, v := range remote.Variants {
		product.Variants = append(product.Variants, domain.ProductVariant{
			ExternalVariantID: v.VID,
			Name:              v.Name,
			SKU:               v.SKU,
			SellPrice:         v.SellPrice,
			Stock:             v.Stock,
		})
	}

	return product, nil
}
