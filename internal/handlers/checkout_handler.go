package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"modern-pos-backend/internal/models"
	"modern-pos-backend/internal/payment"
	"modern-pos-backend/internal/poserr"
)

type CheckoutRequest struct {
	Items    []models.CartItem `json:"items" binding:"required"`
	Method   string            `json:"method" binding:"required"` // "cash" or "card"
	Tendered *decimal.Decimal  `json:"tendered,omitempty"`        // cash only
}

// Checkout commits a cart. Card payments go through the terminal first;
// sale rows and stock decrements are only written once the terminal
// approves, so a decline leaves the database untouched. Cash payments
// skip the terminal entirely but must cover the total.
func (h *Handlers) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Add items before payment"})
		return
	}

	total := models.CartTotal(req.Items)
	change := decimal.Zero

	switch req.Method {
	case "cash":
		if req.Tendered == nil || req.Tendered.LessThan(total) {
			h.fail(c, poserr.Validation("cash received is less than total"))
			return
		}
		change = req.Tendered.Sub(total)
		h.openCashDrawer()

	case "card":
		operator := ""
		if id, ok := c.Get("staffID"); ok {
			if staffID, ok := id.(uint); ok {
				operator = "staff-" + strconv.FormatUint(uint64(staffID), 10)
			}
		}
		// GST-inclusive pricing: the register shows the GST figure as
		// the inclusive total and applies no separate discount line
		totals := payment.Totals{Sub: total, Discount: decimal.Zero, GST: total}
		payload := h.Terminal.BuildPayload(total, totals, req.Items, operator)
		result, err := h.Terminal.Charge(payload)
		if err != nil {
			// Socket trouble: the card may or may not have been charged.
			h.fail(c, err)
			return
		}
		if !result.Approved {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": result.Reason})
			return
		}

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment method " + req.Method})
		return
	}

	saved, err := h.Sales.RecordSale(c.Request.Context(), req.Items, req.Method)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !saved {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store sale"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment successful",
		"total":   total,
		"change":  change,
	})
}

// openCashDrawer is the side-effect hook for drawer hardware. The
// backbone only logs; the drawer protocol lives outside this core.
func (h *Handlers) openCashDrawer() {
	h.Log.Info("cash drawer kick requested")
}
