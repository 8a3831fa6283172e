package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aidin1998/todolist/internal/config"
	"github.com/Aidin1998/todolist/internal/server"
	"github.com/Aidin1998/todolist/internal/store"
	"github.com/Aidin1998/todolist/internal/store/sqlstore"
	"github.com/Aidin1998/todolist/internal/telemetry"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/Aidin1998/todolist/pkg/logger"
	"github.com/Aidin1998/todolist/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const dbStatsInterval = 30 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	for _, w := range cfg.Warnings() {
		zapLogger.Warn("configuration warning", zap.String("detail", w))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, os.Stdout)
	if err != nil {
		zapLogger.Fatal("Failed to set up tracing", zap.Error(err))
	}

	// The URI may carry credentials, so only the backend is logged.
	st := store.OpenOrUnavailable(ctx, cfg.Store, zapLogger)
	zapLogger.Info("store opened", zap.String("backend", st.Backend()))

	if sqlStore, ok := st.(*sqlstore.Store); ok && cfg.Metrics.Enabled {
		go collectDBStats(ctx, sqlStore, zapLogger)
	}

	todoSvc := todo.NewService(st, zapLogger)

	srv, err := server.NewServer(zapLogger, todoSvc, cfg)
	if err != nil {
		zapLogger.Fatal("Failed to create HTTP server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("Shutting down server...")
	case err := <-errCh:
		if err != nil {
			zapLogger.Error("HTTP server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	if err := st.Close(); err != nil {
		zapLogger.Error("Failed to close store", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLogger.Error("Failed to flush traces", zap.Error(err))
	}

	zapLogger.Info("Server exited properly")
}

func collectDBStats(ctx context.Context, st *sqlstore.Store, log *zap.Logger) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sqlDB, err := st.DB().DB()
			if err != nil {
				log.Warn("failed to read db pool stats", zap.Error(err))
				continue
			}
			metrics.ObserveDBStats(st.Backend(), sqlDB.Stats())
		}
	}
}
