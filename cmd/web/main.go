package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"freightdesk/internal/apiclient"
	"freightdesk/internal/config"
	"freightdesk/internal/logger"
	"freightdesk/internal/proxy"
	"freightdesk/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	fwd, err := proxy.New(cfg.APIURL, nil, zlog.Named("proxy"))
	if err != nil {
		zlog.Fatal("Invalid API_URL", zap.String("api_url", cfg.APIURL), zap.Error(err))
	}

	server := web.NewServer(apiclient.New(cfg.APIURL, nil), fwd, web.Options{
		SecureCookie: cfg.IsProduction(),
		CookieMaxAge: cfg.Auth.TokenTTL,
	}, zlog)

	srv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           server.Router(gin.Recovery(), logger.GinMiddleware(zlog)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info("Web dashboard listening", zap.String("addr", srv.Addr), zap.String("api_url", cfg.APIURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
