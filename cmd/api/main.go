package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/config"
	"idservices-admin/pkg/logger"
)

func main() {
	// ========================================
	// LOAD ENVIRONMENT VARIABLES
	// ========================================
	// .env is optional, production uses the process environment
	if err := config.LoadDotenv(); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load config")
	}

	logger.Init(cfg.App.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Str("environment", cfg.App.Environment).Msg("🌍 Environment")

	Serve(cfg)
}
