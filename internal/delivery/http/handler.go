package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodtracker/backend/internal/domain"
)

// ProductUsecase is the product lookup façade served over HTTP
type ProductUsecase interface {
	Search(ctx context.Context, term string, page int) domain.SearchResult
	GetByBarcode(ctx context.Context, code string) (domain.Product, bool)
	Alternatives(ctx context.Context, code string) ([]domain.Product, bool)
	RecordScan(ctx context.Context, code string) (domain.Product, bool)
	RecentScans(ctx context.Context) []domain.Product
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products ProductUsecase
}

// NewHandler creates a new HTTP handler. A nil usecase makes every product
// endpoint answer 501.
func NewHandler(products ProductUsecase) *Handler {
	return &Handler{products: products}
}

// ScanRequest is the body of POST /api/v1/scans
type ScanRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodtracker-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles GET /api/v1/products/search?q=&page=
func (h *Handler) SearchProducts(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = n
	}

	c.JSON(http.StatusOK, h.products.Search(c.Request.Context(), c.Query("q"), page))
}

// GetProduct handles GET /api/v1/products/:barcode
func (h *Handler) GetProduct(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	product, ok := h.products.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if !ok {
		productNotFound(c)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetAlternatives handles GET /api/v1/products/:barcode/alternatives
func (h *Handler) GetAlternatives(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	alternatives, ok := h.products.Alternatives(c.Request.Context(), c.Param("barcode"))
	if !ok {
		productNotFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alternatives": alternatives})
}

// GetMacros handles GET /api/v1/products/:barcode/macros
func (h *Handler) GetMacros(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	product, ok := h.products.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if !ok {
		productNotFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"macros": product.Macros()})
}

// RecordScan handles POST /api/v1/scans
func (h *Handler) RecordScan(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Barcode) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must contain a non-empty barcode"})
		return
	}

	product, ok := h.products.RecordScan(c.Request.Context(), req.Barcode)
	if !ok {
		productNotFound(c)
		return
	}
	c.JSON(http.StatusOK, product)
}

// RecentScans handles GET /api/v1/scans
func (h *Handler) RecentScans(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": h.products.RecentScans(c.Request.Context())})
}

func (h *Handler) configured(c *gin.Context) bool {
	if h.products == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "product service not configured"})
		return false
	}
	return true
}

func productNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrProductNotFound.Error()})
}
