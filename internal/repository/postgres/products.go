package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `
	id, sku, name, description, base_price, display_price, stock, images,
	variants, external_product_id, category_id, category_name, is_active,
	created_at, updated_at
`

func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) (bool, error) {
	// xmax = 0 only holds for a freshly inserted row, so the store itself
	// reports insert vs update and callers never need a timestamp heuristic.
	query := `
		INSERT INTO products (
			id, sku, name, description, base_price, display_price, stock, images,
			variants, external_product_id, category_id, category_name, is_active,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (external_product_id) DO UPDATE SET
			sku = EXCLUDED.sku,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			base_price = EXCLUDED.base_price,
			display_price = EXCLUDED.display_price,
			stock = EXCLUDED.stock,
			images = EXCLUDED.images,
			variants = EXCLUDED.variants,
			category_id = EXCLUDED.category_id,
			category_name = EXCLUDED.category_name,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted
	`

	now := time.Now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	variantsJSON, err := json.Marshal(product.Variants)
	if err != nil {
		return false, err
	}

	var inserted bool
	err = r.db.QueryRowContext(ctx, query,
		product.ID,
		product.SKU,
		product.Name,
		product.Description,
		product.BasePrice,
		product.DisplayPrice,
		product.Stock,
		pq.Array(product.Images),
		variantsJSON,
		product.ExternalProductID,
		product.CategoryID,
		product.CategoryName,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&inserted)

	if err != nil {
		// Fallback key: a row created before the supplier link existed (or
		// under a different external id) still owns the sku. Adopt it.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == "products_sku_key" {
			return false, r.adoptBySKU(ctx, product)
		}
		r.logger.Error("Failed to upsert product", zap.Error(err))
		return false, err
	}

	return inserted, nil
}

// adoptBySKU rewrites the row holding the product's sku, relinking it to the
// incoming external product id.
func (r *productRepository) adoptBySKU(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2,
			description = $3,
			base_price = $4,
			display_price = $5,
			stock = $6,
			images = $7,
			variants = $8,
			external_product_id = $9,
			category_id = $10,
			category_name = $11,
			is_active = $12,
			updated_at = $13
		WHERE sku = $1
	`

	variantsJSON, err := json.Marshal(product.Variants)
	if err != nil {
		return err
	}

	r.logger.Warn("Relinking product by sku",
		zap.String("sku", product.SKU),
		zap.Stringp("external_product_id", product.ExternalProductID),
	)

	_, err = r.db.ExecContext(ctx, query,
		product.SKU,
		product.Name,
		product.Description,
		product.BasePrice,
		product.DisplayPrice,
		product.Stock,
		pq.Array(product.Images),
		variantsJSON,
		product.ExternalProductID,
		product.CategoryID,
		product.CategoryName,
		product.IsActive,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to relink product by sku", zap.Error(err))
		return err
	}

	return nil
}

func (r *productRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE external_product_id = $1`
	return r.scanOne(ctx, query, externalID)
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	return r.scanOne(ctx, query, sku)
}

func (r *productRepository) scanOne(ctx context.Context, query string, arg interface{}) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	product, err := scanProduct(row.Scan)
	if err == sql.ErrNoRows {
		id, _ := arg.(string)
		return nil, &errors.ErrNotFound{Resource: "product", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get product", zap.Error(err))
		return nil, err
	}
	return product, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT ` + productColumns + ` FROM products ORDER BY updated_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func scanProduct(scan func(dest ...interface{}) error) (*domain.Product, error) {
	var product domain.Product
	var variantsJSON []byte
	var externalProductID sql.NullString
	var categoryID sql.NullString
	var categoryName sql.NullString

	err := scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.BasePrice,
		&product.DisplayPrice,
		&product.Stock,
		pq.Array(&product.Images),
		&variantsJSON,
		&externalProductID,
		&categoryID,
		&categoryName,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if externalProductID.Valid {
		product.ExternalProductID = &externalProductID.String
	}
	if categoryID.Valid {
		product.CategoryID = &categoryID.String
	}
	if categoryName.Valid {
		product.CategoryName = &categoryName.String
	}

	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &product.Variants); err != nil {
			return nil, err
		}
	}

	return &product, nil
}
