package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/mcm-alerts/mcm-alerts/db"
	"github.com/mcm-alerts/mcm-alerts/internal/auth"
	"github.com/mcm-alerts/mcm-alerts/internal/config"
	"github.com/mcm-alerts/mcm-alerts/internal/handlers"
	"github.com/mcm-alerts/mcm-alerts/internal/logger"
	"github.com/mcm-alerts/mcm-alerts/internal/router"
	"github.com/mcm-alerts/mcm-alerts/internal/scheduler"
	"github.com/mcm-alerts/mcm-alerts/internal/services"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env file not loaded: %v", err)
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)

	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	defer zlog.Sync()

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.MigrateDatabase(); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	if _, err := auth.EnsureDefaultUser(cfg.SeedUsername, cfg.SeedPassword); err != nil {
		zlog.Fatal("failed to seed default user", zap.Error(err))
	}

	push := services.NewPushSender(cfg.FCMServerKey, cfg.FCMEndpoint, zlog.Named("push"))

	if !push.Enabled() {
		zlog.Info("FCM server key not set, push delivery disabled")
	}

	handlers.Configure(zlog.Named("http"), push)

	sweeper := scheduler.NewSessionSweeper(zlog.Named("sessions"))
	sweeper.Start()
	defer sweeper.Stop()

	r := router.NewRouter()

	zlog.Info("starting server", zap.String("port", cfg.Port))

	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
