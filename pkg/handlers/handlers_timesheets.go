package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/arnavshah/carehome-shifts-api/pkg/timesheets"
	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTimesheet(c *gin.Context) {
	var input struct {
		ShiftID string `json:"shiftId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	ts, err := h.Timesheets.Create(c.Request.Context(), caller(c), input.ShiftID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ts)
}

func (h *Handler) ListTimesheets(c *gin.Context) {
	list, err := h.Timesheets.List(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ApproveTimesheet approves with an optional rating and review in the body
func (h *Handler) ApproveTimesheet(c *gin.Context) {
	var review timesheets.Review
	if err := c.ShouldBindJSON(&review); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, err)
		return
	}

	ts, err := h.Timesheets.Approve(c.Request.Context(), caller(c), c.Param("timesheetId"), review)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

func (h *Handler) RejectTimesheet(c *gin.Context) {
	ts, err := h.Timesheets.Reject(c.Request.Context(), caller(c), c.Param("timesheetId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}
