package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListActiveStaff feeds the terminal's staff selector.
func (h *Handlers) ListActiveStaff(c *gin.Context) {
	staff, err := h.Staff.ListActiveStaff(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

// GetTodayAttendance returns today's latest attendance row for a staff
// member, or 204 when they have not clocked in yet. The UI uses the
// open/closed state to decide between offering clock-in and clock-out.
func (h *Handlers) GetTodayAttendance(c *gin.Context) {
	staffID, err := strconv.ParseUint(c.Param("staffID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff ID"})
		return
	}

	attendance, err := h.Staff.GetTodayAttendance(c.Request.Context(), uint(staffID))
	if err != nil {
		h.fail(c, err)
		return
	}
	if attendance == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attendance": attendance,
		"open":       attendance.IsOpen(),
	})
}

type ClockInRequest struct {
	StaffID uint            `json:"staff_id" binding:"required"`
	Role    string          `json:"role" binding:"required"`
	Salary  decimal.Decimal `json:"salary"`
}

// ClockIn opens a new attendance record. Callers should have confirmed
// via GetTodayAttendance that no open record exists today.
func (h *Handlers) ClockIn(c *gin.Context) {
	var req ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	id, err := h.Staff.ClockIn(c.Request.Context(), req.StaffID, req.Role, req.Salary)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attendance_id": id})
}

type ClockOutRequest struct {
	AttendanceID uint `json:"attendance_id" binding:"required"`
}

// ClockOut closes an attendance record. 404 means no row matched.
func (h *Handlers) ClockOut(c *gin.Context) {
	var req ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updated, err := h.Staff.ClockOut(c.Request.Context(), req.AttendanceID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clock-out did not update"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Clocked out"})
}
