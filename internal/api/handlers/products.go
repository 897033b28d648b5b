package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/internal/repository"
)

// ProductResponse represents a local catalog product
type ProductResponse struct {
	ID                string                  `json:"id"`
	SKU               string                  `json:"sku"`
	Name              string                  `json:"name"`
	Description       string                  `json:"description,omitempty"`
	BasePrice         float64                 `json:"base_price"`
	DisplayPrice      float64                 `json:"display_price"`
	Stock             int                     `json:"stock"`
	Images            []string                `json:"images,omitempty"`
	Variants          []domain.ProductVariant `json:"variants,omitempty"`
	ExternalProductID *string                 `json:"external_product_id,omitempty"`
	CategoryID        *string                 `json:"category_id,omitempty"`
	CategoryName      *string                 `json:"category_name,omitempty"`
	IsActive          bool                    `json:"is_active"`
	UpdatedAt         string                  `json:"updated_at"`
}

// HandleListProducts handles GET /v1/products. Read-only view of the local
// catalog; products are written only by the sync engine.
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		products, err := repos.Product.List(c.Request.Context(), limit, offset)
		if err != nil {
			logger.Error("Failed to list products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]ProductResponse, len(products))
		for i, p := range products {
			responses[i] = ProductResponse{
				ID:                p.ID.String(),
				SKU:               p.SKU,
				Name:              p.Name,
				Description:       p.Description,
				BasePrice:         p.BasePrice,
				DisplayPrice:      p.DisplayPrice,
				Stock:             p.Stock,
				Images:            p.Images,
				Variants:          p.Variants,
				ExternalProductID: p.ExternalProductID,
				CategoryID:        p.CategoryID,
				CategoryName:      p.CategoryName,
				IsActive:          p.IsActive,
				UpdatedAt:         p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
		}

		c.JSON(http.StatusOK, gin.H{"products": responses})
	}
}
