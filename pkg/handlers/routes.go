package handlers

import (
	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// Routes registers every endpoint under the given group
func (h *Handler) Routes(r gin.IRouter) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/home-staff-invitations/token/:token", h.GetStaffInvitationByToken)

	api := r.Group("")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/auth/me", h.Me)
		api.GET("/users/search", h.SearchUsers)
		api.GET("/users/linked", h.LinkedUsers)
		api.PATCH("/users/unlink", h.Unlink)

		api.GET("/shifts", h.ListShifts)
		api.GET("/shifts/unaccepted", h.ListUnacceptedShifts)
		api.POST("/shifts", h.CreateShift)
		api.POST("/shifts/bulk", h.CreateShifts)
		api.POST("/shifts/validate", h.ValidateShifts)
		api.GET("/shifts/:shiftId", h.GetShift)
		api.PUT("/shifts/:shiftId", h.UpdateShift)
		api.DELETE("/shifts/:shiftId", h.DeleteShift)
		api.PATCH("/shifts/:shiftId/accept", h.AcceptShift)
		api.PATCH("/shifts/:shiftId/reject", h.RejectShift)
		api.PUT("/shifts/:shiftId/assign-users", h.AssignUsers)
		api.POST("/shifts/:shiftId/assign-carers", h.AssignCarers)
		api.POST("/shifts/:shiftId/unassign", h.UnassignCarer)
		api.GET("/shifts/:shiftId/suggestions", h.SuggestCarers)

		api.GET("/shifts/:shiftId/qr", h.GenerateQRCode)
		api.POST("/shifts/:shiftId/verify", h.VerifyPublicKey)
		api.POST("/shifts/:shiftId/challenge", h.IssueChallenge)
		api.PUT("/checkin/key", h.RegisterCarerKey)
		api.POST("/checkin/challenges/:challengeId", h.AnswerChallenge)

		api.GET("/shift-types", h.ListShiftTypes)
		api.POST("/shift-types", h.CreateShiftTypes)
		api.PUT("/shift-types/:typeId", h.EditShiftType)
		api.DELETE("/shift-types/:typeId", h.DeleteShiftType)
		api.DELETE("/shift-types", h.DeleteCatalog)

		api.GET("/timesheets", h.ListTimesheets)
		api.POST("/timesheets", h.CreateTimesheet)
		api.PATCH("/timesheets/:timesheetId/approve", h.ApproveTimesheet)
		api.PATCH("/timesheets/:timesheetId/reject", h.RejectTimesheet)

		api.GET("/invitations", h.ListInvitations)
		api.POST("/invitations", h.SendInvitation)
		api.GET("/invitations/token/:token", h.GetInvitationByToken)
		api.POST("/invitations/:invitationId/accept", h.AcceptInvitation)
		api.POST("/invitations/:invitationId/reject", h.RejectInvitation)
		api.DELETE("/invitations/:invitationId", h.CancelInvitation)

		api.GET("/home-staff-invitations", h.ListStaffInvitations)
		api.POST("/home-staff-invitations", RequireAccount(models.AccountHome, models.AccountAgency), h.SendStaffInvitation)
		api.PATCH("/home-staff-invitations/:invitationId", h.UpdateStaffInvitationStatus)
		api.DELETE("/home-staff-invitations/:invitationId", h.DeleteStaffInvitation)
	}
}
