package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"modern-pos-backend/internal/models"
)

// ScanProduct resolves a scanned barcode, cache first. 404 means the
// barcode is unknown everywhere; pool/query trouble reports as such so
// the cashier can tell "not stocked" from "server down".
func (h *Handlers) ScanProduct(c *gin.Context) {
	barcode := c.Param("barcode")
	product, err := h.Products.FetchByBarcode(c.Request.Context(), barcode)
	if err != nil {
		h.fail(c, err)
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No product found for barcode " + barcode})
		return
	}
	c.JSON(http.StatusOK, product)
}

// SearchProducts matches products by name or barcode substring.
func (h *Handlers) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	products, err := h.Products.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// RefreshCache forces a full reload of the product cache from the
// source of truth and reports how many products it now holds.
func (h *Handlers) RefreshCache(c *gin.Context) {
	products, err := h.Products.RefreshCache(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cached": len(products)})
}
