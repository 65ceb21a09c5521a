package handler

import (
	"context"
	"net/http"

	"github.com/arnavshah/carehome-shifts-api/pkg/config"
	"github.com/arnavshah/carehome-shifts-api/pkg/database"
	"github.com/arnavshah/carehome-shifts-api/pkg/logging"
	"github.com/arnavshah/carehome-shifts-api/pkg/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	r       *gin.Engine
	initErr error
)

func init() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		initErr = err
		return
	}

	db, err := database.InitDB(cfg, log)
	if err != nil {
		log.Error("db init failed", zap.Error(err))
		initErr = err
		return
	}

	r, initErr = server.Bootstrap(context.Background(), cfg, db, log)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		http.Error(w, `{"error":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
