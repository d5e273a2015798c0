package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/david/volunteer-board/internal/api"
	"github.com/david/volunteer-board/internal/board"
	"github.com/david/volunteer-board/internal/gate"
	"github.com/david/volunteer-board/internal/ingest"
)

func main() {
	logger, err := newLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	port := getenv("PORT", "8081")

	reg, err := ingest.LoadRegistry(os.Getenv("FEEDS_CONFIG"))
	if err != nil {
		logger.Fatal("failed to load feeds registry", zap.Error(err))
	}

	state := board.NewState()
	loader, err := board.NewLoaderFromRegistry(state, reg, logger)
	if err != nil {
		logger.Fatal("failed to configure loader", zap.Error(err))
	}

	srv, err := api.NewServer(api.Options{
		Loader:         loader,
		Gates:          gate.NewSet(getenv("TEACHER_PASSWORD", "teacher123"), getenv("ORGANIZER_PASSWORD", "organizer123")),
		AllowedOrigins: splitOrigins(os.Getenv("CORS_ORIGINS")),
		AdminSecret:    os.Getenv("ADMIN_SECRET"),
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The views report loading until this finishes; a failure leaves them
	// reporting the load error.
	go func() {
		if _, err := loader.Load(ctx); err != nil {
			logger.Error("initial load failed", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("server starting", zap.String("port", port))
		if err := srv.Start(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	return config.Build()
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
