package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex/internal/config"
	"github.com/kailas-cloud/termdex/internal/domain/query"
	logpkg "github.com/kailas-cloud/termdex/internal/logger"
	"github.com/kailas-cloud/termdex/internal/metrics"
	chiTransport "github.com/kailas-cloud/termdex/internal/transport/chi"
	dictionaryuc "github.com/kailas-cloud/termdex/internal/usecase/dictionary"
	healthuc "github.com/kailas-cloud/termdex/internal/usecase/health"
	"github.com/kailas-cloud/termdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting termdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend", cfg.Backend.Driver),
	)

	ctx := context.Background()
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open backend", zap.Error(err))
	}
	defer backend.close()
	logger.Info("Backend ready", zap.String("driver", cfg.Backend.Driver))

	if err := loadDataFile(ctx, backend, cfg.Dictionary.DataFile, logger); err != nil {
		logger.Fatal("Failed to load data file", zap.Error(err))
	}

	metrics.RegisterMatchMetrics()

	dc := cfg.Dictionary
	dict := dictionaryuc.New(backend.store).
		WithPagination(dc.DefaultPageSize, dc.MaxPageSize).
		WithNumberMatch(dictionaryuc.NumberMatchConfig{
			Disabled:        !dc.NumberMatch.IsEnabled(),
			DictID:          dc.NumberMatch.DictID,
			ConceptIDPrefix: dc.NumberMatch.ConceptIDPrefix,
		}).
		WithLogger(logger).
		WithRecorder(metrics.Recorder{})

	// A failed preload leaves the server up; /health reports it as degraded.
	if len(dc.FixedTerms) > 0 {
		if err := dict.LoadFixedTerms(ctx, dc.FixedTerms, query.EntryQuery{}); err != nil {
			logger.Warn("Fixed terms not loaded", zap.Error(err))
		} else {
			logger.Info("Fixed terms loaded", zap.Int("cached", dict.FixedTerms().Len()))
		}
	}

	healthSvc := healthuc.New(backend.pinger, dict)
	server := chiTransport.NewServer(dict, backend.writer, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
