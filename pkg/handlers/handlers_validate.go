package handlers

import (
	"net/http"

	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/gin-gonic/gin"
)

// ValidateShifts dry-runs a bulk shift upload against the caller's catalog
func (h *Handler) ValidateShifts(c *gin.Context) {
	var input struct {
		Shifts []shifts.CreateShiftInput `json:"shifts" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Shifts) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one shift is required",
		})
		return
	}

	preview, skipped, err := h.Shifts.PreviewShifts(c.Request.Context(), caller(c), input.Shifts)
	if err != nil {
		if status := statusFor(err); status != http.StatusBadRequest {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	slots := 0
	for _, s := range preview {
		slots += s.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"shift_count":   len(preview),
			"skipped_count": skipped,
			"carer_slots":   slots,
		},
	})
}
