package handlers

import (
	"net/http"

	"github.com/arnavshah/carehome-shifts-api/pkg/invitations"
	"github.com/gin-gonic/gin"
)

func (h *Handler) SendInvitation(c *gin.Context) {
	var input struct {
		ReceiverID string `json:"receiverId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	inv, err := h.Invitations.Send(c.Request.Context(), caller(c), input.ReceiverID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) ListInvitations(c *gin.Context) {
	list, err := h.Invitations.List(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetInvitationByToken(c *gin.Context) {
	inv, err := h.Invitations.GetByToken(c.Request.Context(), caller(c), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) AcceptInvitation(c *gin.Context) {
	inv, err := h.Invitations.Accept(c.Request.Context(), caller(c), c.Param("invitationId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) RejectInvitation(c *gin.Context) {
	inv, err := h.Invitations.Reject(c.Request.Context(), caller(c), c.Param("invitationId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) CancelInvitation(c *gin.Context) {
	if err := h.Invitations.Cancel(c.Request.Context(), caller(c), c.Param("invitationId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled"})
}

func (h *Handler) SendStaffInvitation(c *gin.Context) {
	var input invitations.StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	inv, err := h.Invitations.SendStaff(c.Request.Context(), caller(c), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) ListStaffInvitations(c *gin.Context) {
	list, err := h.Invitations.ListStaff(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetStaffInvitationByToken is public: new staff open it before they have an account
func (h *Handler) GetStaffInvitationByToken(c *gin.Context) {
	inv, err := h.Invitations.GetStaffByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) UpdateStaffInvitationStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, err)
		return
	}

	inv, err := h.Invitations.UpdateStaffStatus(c.Request.Context(), caller(c), c.Param("invitationId"), input.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) DeleteStaffInvitation(c *gin.Context) {
	if err := h.Invitations.DeleteStaff(c.Request.Context(), caller(c), c.Param("invitationId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation deleted"})
}
