package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"habitlog/config"
	"habitlog/internal/cache"
	"habitlog/internal/logstore"
	"habitlog/internal/middleware"
	"habitlog/internal/model"
	"habitlog/internal/router"
	"habitlog/internal/service"
	"habitlog/pkg/logger"
	"habitlog/pkg/metrics"
	"habitlog/pkg/otel"
	"habitlog/pkg/snowflake"
	"habitlog/pkg/token"
	"habitlog/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if config.Cfg.OTelEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: "1.0.0",
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTLPEndpoint,
			SampleRatio:    config.Cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()

		if err := metrics.InitMetrics(); err != nil {
			logger.Logger.Fatal("Failed to initialize metrics", zap.Error(err))
		}
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	} // token before middleware, the auth middleware depends on it

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	// The field mapping is part of startup validation: a broken mapping
	// should stop the process, not surface per-request.
	mapping, err := model.DefaultFieldMapping()
	if err != nil {
		logger.Logger.Fatal("Invalid field mapping", zap.Error(err))
	}

	store, err := logstore.New(mapping)
	if err != nil {
		logger.Logger.Fatal("Failed to build log store", zap.Error(err))
	}

	qc := cache.New(fetchForStore(store), cache.Options{
		FreshFor:   time.Duration(config.Cfg.CacheFreshSeconds) * time.Second,
		EvictAfter: time.Duration(config.Cfg.CacheEvictSeconds) * time.Second,
	})
	defer qc.Dispose()

	service.Init(store, qc, mapping)

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
		zap.String("backend", store.Name()),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)

	var h *server.Hertz
	if config.Cfg.OTelEnabled {
		tracerOpt, tracingMiddleware := middleware.NewServerTracerConfig()
		h = server.Default(server.WithHostPorts(addr), tracerOpt)
		h.Use(tracingMiddleware)
	} else {
		h = server.Default(server.WithHostPorts(addr))
	}

	router.Register(h)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}

// fetchForStore adapts the log store to the cache's key-based loader. Keys
// have the shape "user:<id>".
func fetchForStore(store logstore.LogStore) cache.FetchFunc {
	return func(ctx context.Context, key string) ([]model.DailyRecord, error) {
		raw := strings.TrimPrefix(key, "user:")
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return store.FetchAll(ctx, userID)
	}
}
