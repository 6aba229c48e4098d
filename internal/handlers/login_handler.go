package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies staff credentials against the staff pool and issues a
// session token. Inactive staff and bad passwords get the same answer.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	staff, err := h.Staff.VerifyCredentials(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	if staff == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials or inactive staff"})
		return
	}

	token, err := h.Tokens.GenerateToken(staff.ID, staff.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     staff.Role,
		"username": staff.Username,
		"name":     staff.Name,
		"staff_id": staff.ID,
	})
}
