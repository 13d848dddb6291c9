package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "freightdesk/api/swagger" // swagger docs
	"freightdesk/internal/app"
	"freightdesk/internal/config"
	"freightdesk/internal/database"
	"freightdesk/internal/logger"

	"go.uber.org/zap"
)

// @title           Freight Desk API
// @version         1.0
// @description     Back office API for freight orders, suppliers, forwarders, invoices and their documents.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		zlog.Fatal("Database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("Database migration failed", zap.Error(err))
	}
	zlog.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	api, err := app.NewAPI(cfg, db, zlog)
	if err != nil {
		zlog.Fatal("API setup failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up WebSocket Hub
	go api.Hub.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
