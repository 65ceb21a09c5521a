package handlers

import (
	"net/http"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/gin-gonic/gin"
)

// shiftView is a shift as seen by an assigned carer, with their timesheet attached
type shiftView struct {
	models.Shift
	Timesheet *models.Timesheet `json:"timesheet"`
}

func (h *Handler) ListShifts(c *gin.Context) {
	cl := caller(c)
	list, err := h.Shifts.ListShifts(c.Request.Context(), cl)
	if err != nil {
		h.fail(c, err)
		return
	}

	if cl.AccountType != models.AccountCarer && cl.AccountType != models.AccountSeniorCarer {
		c.JSON(http.StatusOK, list)
		return
	}

	views := make([]shiftView, 0, len(list))
	for _, s := range list {
		ts, err := h.Timesheets.ForCarer(c.Request.Context(), cl.UserID, s.ID)
		if err != nil {
			h.fail(c, err)
			return
		}
		views = append(views, shiftView{Shift: s, Timesheet: ts})
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) ListUnacceptedShifts(c *gin.Context) {
	list, err := h.Shifts.ListUnacceptedShifts(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetShift(c *gin.Context) {
	shift, err := h.Shifts.GetShift(c.Request.Context(), c.Param("shiftId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) CreateShift(c *gin.Context) {
	var input shifts.CreateShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	shift, err := h.Shifts.CreateShift(c.Request.Context(), caller(c), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

func (h *Handler) CreateShifts(c *gin.Context) {
	var input struct {
		Shifts []shifts.CreateShiftInput `json:"shifts" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	created, err := h.Shifts.CreateShifts(c.Request.Context(), caller(c), input.Shifts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateShift(c *gin.Context) {
	var input shifts.UpdateShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	shift, err := h.Shifts.UpdateShift(c.Request.Context(), caller(c), c.Param("shiftId"), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) DeleteShift(c *gin.Context) {
	shift, err := h.Shifts.DeleteShift(c.Request.Context(), caller(c), c.Param("shiftId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) AcceptShift(c *gin.Context) {
	shift, err := h.Shifts.AcceptShift(c.Request.Context(), caller(c), c.Param("shiftId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) RejectShift(c *gin.Context) {
	shift, err := h.Shifts.RejectShift(c.Request.Context(), caller(c), c.Param("shiftId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// AssignUsers replaces a shift's assignment set on behalf of the owning home
func (h *Handler) AssignUsers(c *gin.Context) {
	var input struct {
		UserIDs []string `json:"userIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	shift, err := h.Shifts.AssignUsers(c.Request.Context(), caller(c), c.Param("shiftId"), input.UserIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// AssignCarers adds the agency's linked carers to a shift bound to it
func (h *Handler) AssignCarers(c *gin.Context) {
	var input struct {
		CarerIDs []string `json:"carerIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	shift, err := h.Shifts.AssignCarersToShift(c.Request.Context(), caller(c), c.Param("shiftId"), input.CarerIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Carers assigned successfully", "shift": shift})
}

func (h *Handler) UnassignCarer(c *gin.Context) {
	var input struct {
		CarerID string `json:"carerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	shift, err := h.Shifts.UnassignCarerFromShift(c.Request.Context(), caller(c), c.Param("shiftId"), input.CarerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Carer unassigned successfully", "shift": shift})
}

// SuggestCarers proposes free linked carers for the agency's open places
func (h *Handler) SuggestCarers(c *gin.Context) {
	result, err := h.Shifts.SuggestCarers(c.Request.Context(), caller(c), c.Param("shiftId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
