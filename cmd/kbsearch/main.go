package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/config"
	dbRedis "github.com/kbase-cloud/kbsearch/internal/db/redis"
	"github.com/kbase-cloud/kbsearch/internal/domain"
	logpkg "github.com/kbase-cloud/kbsearch/internal/logger"
	"github.com/kbase-cloud/kbsearch/internal/metrics"
	articlerepo "github.com/kbase-cloud/kbsearch/internal/repository/article"
	tagrepo "github.com/kbase-cloud/kbsearch/internal/repository/tag"
	chiTransport "github.com/kbase-cloud/kbsearch/internal/transport/chi"
	openaiTransport "github.com/kbase-cloud/kbsearch/internal/transport/openai"
	articleuc "github.com/kbase-cloud/kbsearch/internal/usecase/article"
	"github.com/kbase-cloud/kbsearch/internal/usecase/generator"
	healthuc "github.com/kbase-cloud/kbsearch/internal/usecase/health"
	intakeuc "github.com/kbase-cloud/kbsearch/internal/usecase/intake"
	searchuc "github.com/kbase-cloud/kbsearch/internal/usecase/search"
	taguc "github.com/kbase-cloud/kbsearch/internal/usecase/tag"
	"github.com/kbase-cloud/kbsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting kbsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGeneratorMetrics()

	// Embedders — one instruction flavor for documents, one for queries.
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var docEmbedder domain.Embedder = baseEmbedder
	if cfg.Embedding.DocumentInstruction != "" {
		docEmbedder = domain.NewInstructionEmbedder(baseEmbedder, cfg.Embedding.DocumentInstruction)
	}
	var queryEmbedder domain.Embedder = baseEmbedder
	if cfg.Embedding.QueryInstruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(baseEmbedder, cfg.Embedding.QueryInstruction)
	}
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Repositories
	articleRepo := articlerepo.New(store)
	tagRepo := tagrepo.New(store)

	// Background generation pool — drained on shutdown.
	pool := generator.NewPool(articleRepo, docEmbedder, generator.Config{
		Workers:      cfg.Generator.Workers,
		QueueSize:    cfg.Generator.QueueSize,
		JobTimeout:   time.Duration(cfg.Generator.JobTimeoutSec) * time.Second,
		DrainTimeout: time.Duration(cfg.Generator.DrainTimeoutSec) * time.Second,
	}, logger)

	// Use case services
	tagSvc := taguc.New(tagRepo, articleRepo, logger)
	articleSvc := articleuc.New(articleRepo, pool, tagSvc, articleuc.Pagination{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, logger)
	searchSvc := searchuc.New(articleRepo, queryEmbedder, searchuc.Options{
		DefaultLimit:     cfg.Search.DefaultLimit,
		DefaultThreshold: cfg.Search.DefaultThreshold,
		MaxLimit:         cfg.Search.MaxLimit,
	}, logger)

	composer := openaiTransport.NewComposer(&openaiTransport.ComposerConfig{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Intake.ChatModel,
	})
	intakeSvc := intakeuc.New(searchSvc, composer, intakeuc.Options{
		MaxCandidates: cfg.Intake.MaxCandidates,
		MinSimilarity: cfg.Intake.MinSimilarity,
	}, logger)

	healthSvc := healthuc.New(store, baseEmbedder)

	server := chiTransport.NewServer(
		articleSvc, tagSvc, searchSvc, intakeSvc, healthSvc,
		chiTransport.NewAuthenticator(cfg.Auth.EditorKeys),
		chiTransport.SearchDefaults{
			Limit:     cfg.Search.DefaultLimit,
			Threshold: cfg.Search.DefaultThreshold,
		},
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	// Drain in-flight generation jobs; past the deadline the pool resets the
	// in-progress flags of whatever was cut off.
	drainCtx, cancelDrain := context.WithTimeout(
		context.Background(), time.Duration(cfg.Generator.DrainTimeoutSec)*time.Second,
	)
	defer cancelDrain()
	if err := pool.Close(drainCtx); err != nil {
		logger.Warn("Generation pool drain timed out", zap.Error(err))
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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
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

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
