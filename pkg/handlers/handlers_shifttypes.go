package handlers

import (
	"net/http"

	"github.com/arnavshah/carehome-shifts-api/pkg/shifttypes"
	"github.com/gin-gonic/gin"
)

// CreateShiftTypes appends entries to the caller's catalog and returns all of it
func (h *Handler) CreateShiftTypes(c *gin.Context) {
	var input struct {
		ShiftTypes []shifttypes.Input `json:"shiftTypes" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	catalog, err := h.ShiftTypes.Create(c.Request.Context(), caller(c), input.ShiftTypes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalog)
}

func (h *Handler) ListShiftTypes(c *gin.Context) {
	catalog, err := h.ShiftTypes.List(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

func (h *Handler) EditShiftType(c *gin.Context) {
	var input shifttypes.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	entry, err := h.ShiftTypes.Edit(c.Request.Context(), caller(c), c.Param("typeId"), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteShiftType(c *gin.Context) {
	if err := h.ShiftTypes.Delete(c.Request.Context(), caller(c), c.Param("typeId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shift type deleted"})
}

func (h *Handler) DeleteCatalog(c *gin.Context) {
	if err := h.ShiftTypes.DeleteCatalog(c.Request.Context(), caller(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shift types deleted"})
}
