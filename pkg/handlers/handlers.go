package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arnavshah/carehome-shifts-api/pkg/accounts"
	"github.com/arnavshah/carehome-shifts-api/pkg/auth"
	"github.com/arnavshah/carehome-shifts-api/pkg/invitations"
	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifttypes"
	"github.com/arnavshah/carehome-shifts-api/pkg/timesheets"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const callerKey = "caller"

// Handler contains dependencies for the route handlers
type Handler struct {
	Accounts    *accounts.Service
	Shifts      *shifts.Service
	ShiftTypes  *shifttypes.Service
	Timesheets  *timesheets.Service
	Invitations *invitations.Service
	Tokens      *auth.Manager
	Log         *zap.Logger
}

// AuthMiddleware verifies the bearer token and stores the caller in the context
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := h.Tokens.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(callerKey, models.Caller{UserID: claims.UserID, AccountType: claims.AccountType})
		c.Next()
	}
}

// RequireAccount rejects callers whose account type is not listed
func RequireAccount(types ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := caller(c).AccountType
		for _, t := range types {
			if t == account {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "account type not allowed for this operation"})
		c.Abort()
	}
}

func caller(c *gin.Context) models.Caller {
	if v, ok := c.Get(callerKey); ok {
		if cl, ok := v.(models.Caller); ok {
			return cl
		}
	}
	return models.Caller{}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, shifts.ErrShiftNotFound),
		errors.Is(err, shifts.ErrChallengeNotFound),
		errors.Is(err, shifttypes.ErrShiftTypeNotFound),
		errors.Is(err, timesheets.ErrTimesheetNotFound),
		errors.Is(err, invitations.ErrInvitationNotFound),
		errors.Is(err, accounts.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, shifts.ErrNotShiftOwner),
		errors.Is(err, shifts.ErrNotShiftAgent),
		errors.Is(err, invitations.ErrNotReceiver),
		errors.Is(err, accounts.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, shifts.ErrForbidden),
		errors.Is(err, shifttypes.ErrForbidden),
		errors.Is(err, timesheets.ErrForbidden),
		errors.Is(err, timesheets.ErrNotTimesheetHome),
		errors.Is(err, timesheets.ErrNotAssigned),
		errors.Is(err, invitations.ErrNotSender):
		return http.StatusForbidden

	case errors.Is(err, shifts.ErrStaleShift),
		errors.Is(err, timesheets.ErrDuplicate),
		errors.Is(err, accounts.ErrEmailTaken):
		return http.StatusConflict

	case errors.Is(err, shifts.ErrCapacityExceeded),
		errors.Is(err, shifts.ErrDuplicateAssignment),
		errors.Is(err, shifts.ErrShiftAlreadyCompleted),
		errors.Is(err, shifts.ErrCarerNotLinked),
		errors.Is(err, shifts.ErrInvalidInput),
		errors.Is(err, shifts.ErrUnknownShiftType),
		errors.Is(err, shifttypes.ErrInvalidTime),
		errors.Is(err, timesheets.ErrTooLate),
		errors.Is(err, timesheets.ErrInvalidRating),
		errors.Is(err, timesheets.ErrNotPending),
		errors.Is(err, invitations.ErrNotPending),
		errors.Is(err, invitations.ErrInvalidStatus),
		errors.Is(err, invitations.ErrSelfInvitation),
		errors.Is(err, accounts.ErrAccountType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes the error body, logging business rejections at warn and the rest at error
func (h *Handler) fail(c *gin.Context, err error) {
	h.failWith(c, statusFor(err), err)
}

func (h *Handler) failWith(c *gin.Context, status int, err error) {
	fields := []zap.Field{
		zap.String("path", c.FullPath()),
		zap.String("user_id", caller(c).UserID),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed", fields...)
	} else {
		h.Log.Warn("request rejected", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
