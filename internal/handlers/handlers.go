// Package handlers exposes the core operations over HTTP so any front
// end can drive the terminal: lookup, search, cache refresh, checkout,
// attendance and login.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"modern-pos-backend/internal/auth"
	"modern-pos-backend/internal/payment"
	"modern-pos-backend/internal/poserr"
	"modern-pos-backend/internal/repository"
)

// Handlers bundles the repositories and clients the routes need.
type Handlers struct {
	Products *repository.ProductRepository
	Sales    *repository.SaleRepository
	Staff    *repository.StaffRepository
	Terminal *payment.TerminalClient
	Tokens   *auth.Manager
	Log      *zap.Logger
}

// fail writes the error with a status derived from its kind, keeping
// "not found" vs "data source unavailable" distinguishable for the UI.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case poserr.IsKind(err, poserr.KindValidation):
		status = http.StatusBadRequest
	case poserr.IsKind(err, poserr.KindConnection):
		status = http.StatusServiceUnavailable
	case poserr.IsKind(err, poserr.KindProtocol):
		status = http.StatusBadGateway
	}
	h.Log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
