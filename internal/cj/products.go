package cj

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// SupplierProduct is the remote catalog representation. It arrives from the
// CJ API and is never mutated locally.
type SupplierProduct struct {
	PID          string            `json:"pid"`
	SKU          string            `json:"productSku"`
	Name         string            `json:"productNameEn"`
	Description  string            `json:"description"`
	SellPrice    float64           `json:"sellPrice"`
	Stock        int               `json:"stockQuantity"`
	Images       []string          `json:"productImages"`
	Variants     []SupplierVariant `json:"variants"`
	CategoryID   string            `json:"categoryId"`
	CategoryName string            `json:"categoryName"`
}

// SupplierVariant is a variant nested under a supplier product.
type SupplierVariant struct {
	VID       string  `json:"vid"`
	Name      string  `json:"variantNameEn"`
	SKU       string  `json:"variantSku"`
	SellPrice float64 `json:"variantSellPrice"`
	Stock     int     `json:"variantStock"`
}

// ProductQuery are the listing filters the CJ product list endpoint accepts.
type ProductQuery struct {
	Keyword     string
	CategoryID  string
	PageNum     int
	PageSize    int
	MinPrice    float64
	MaxPrice    float64
	CountryCode string
}

// ProductPage is one page of the supplier's product listing.
type ProductPage struct {
	List     []SupplierProduct `json:"list"`
	Total    int               `json:"total"`
	PageNum  int               `json:"pageNum"`
	PageSize int               `json:"pageSize"`
}

// ListProducts fetches one page of the supplier catalog.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	query := url.Values{}
	if q.Keyword != "" {
		query.Set("keyWord", q.Keyword)
	}
	if q.CategoryID != "" {
		query.Set("categoryId", q.CategoryID)
	}
	if q.PageNum > 0 {
		query.Set("pageNum", strconv.Itoa(q.PageNum))
	}
	if q.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.MinPrice > 0 {
		query.Set("minPrice", fmt.Sprintf("%.2f", q.MinPrice))
	}
	if q.MaxPrice > 0 {
		query.Set("maxPrice", fmt.Sprintf("%.2f", q.MaxPrice))
	}
	if q.CountryCode != "" {
		query.Set("countryCode", q.CountryCode)
	}

	var page ProductPage
	if err := c.do(ctx, http.MethodGet, "/product/list", query, nil, &page, CallOptions{}); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProductDetail fetches a single product by external id or SKU.
func (c *Client) GetProductDetail(ctx context.Context, pid, sku string) (*SupplierProduct, error) {
	query := url.Values{}
	if pid != "" {
		query.Set("pid", pid)
	} else if sku != "" {
		query.Set("productSku", sku)
	} else {
		return nil, fmt.Errorf("product detail requires pid or sku")
	}

	var product SupplierProduct
	if err := c.do(ctx, http.MethodGet, "/product/query", query, nil, &product, CallOptions{}); err != nil {
		return nil, err
	}
	return &product, nil
}
