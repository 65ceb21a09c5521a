// Package server wires the store, services and routes into a gin engine.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/arnavshah/carehome-shifts-api/pkg/accounts"
	"github.com/arnavshah/carehome-shifts-api/pkg/auth"
	"github.com/arnavshah/carehome-shifts-api/pkg/config"
	"github.com/arnavshah/carehome-shifts-api/pkg/handlers"
	"github.com/arnavshah/carehome-shifts-api/pkg/invitations"
	"github.com/arnavshah/carehome-shifts-api/pkg/logging"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifttypes"
	"github.com/arnavshah/carehome-shifts-api/pkg/store"
	"github.com/arnavshah/carehome-shifts-api/pkg/timesheets"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Version is reported on the root endpoint
const Version = "1.0.0"

// NewHandler builds every service on top of one gorm store
func NewHandler(cfg *config.Config, db *gorm.DB, log *zap.Logger) *handlers.Handler {
	st := store.New(db)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	catalog := shifttypes.NewService(st)

	shiftSvc := shifts.NewService(st, st, catalog, st, shifts.Options{
		CapacityMode: cfg.CapacityMode,
		KeyBits:      cfg.QRKeyBits,
		ChallengeTTL: cfg.ChallengeTTL,
	}, log.Named("shifts"))

	return &handlers.Handler{
		Accounts:    accounts.NewService(st, tokens, log.Named("accounts")),
		Shifts:      shiftSvc,
		ShiftTypes:  catalog,
		Timesheets:  timesheets.NewService(st, st, log.Named("timesheets")),
		Invitations: invitations.NewService(st, st, tokens, cfg.InvitationTTL, log.Named("invitations")),
		Tokens:      tokens,
		Log:         log.Named("http"),
	}
}

// NewRouter mounts the handler routes under the configured prefix
func NewRouter(cfg *config.Config, h *handlers.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinMiddleware(log), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Care Home Shifts API",
			"version": Version,
		})
	})

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	h.Routes(r.Group(prefix))
	return r
}

// Bootstrap ensures the admin account exists and returns the engine
func Bootstrap(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*gin.Engine, error) {
	h := NewHandler(cfg, db, log)
	if err := h.Accounts.EnsureAdminExists(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, err
	}
	return NewRouter(cfg, h, log), nil
}
