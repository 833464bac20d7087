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

	"github.com/kailas-cloud/shopsense/internal/catalog"
	"github.com/kailas-cloud/shopsense/internal/config"
	"github.com/kailas-cloud/shopsense/internal/db"
	dbRedis "github.com/kailas-cloud/shopsense/internal/db/redis"
	"github.com/kailas-cloud/shopsense/internal/domain"
	logpkg "github.com/kailas-cloud/shopsense/internal/logger"
	"github.com/kailas-cloud/shopsense/internal/match"
	"github.com/kailas-cloud/shopsense/internal/metrics"
	"github.com/kailas-cloud/shopsense/internal/repository/embcache"
	"github.com/kailas-cloud/shopsense/internal/repository/liststore"
	"github.com/kailas-cloud/shopsense/internal/repository/semindex"
	chiTransport "github.com/kailas-cloud/shopsense/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/shopsense/internal/transport/openai"
	cartuc "github.com/kailas-cloud/shopsense/internal/usecase/cart"
	healthuc "github.com/kailas-cloud/shopsense/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/shopsense/internal/usecase/indexer"
	recommenduc "github.com/kailas-cloud/shopsense/internal/usecase/recommend"
	searchuc "github.com/kailas-cloud/shopsense/internal/usecase/search"
	"github.com/kailas-cloud/shopsense/internal/version"
)

func main() {
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

	logger.Info("Starting shopsense API server",
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

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	baseEmbedder, embedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to load product catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.String("path", cfg.Catalog.Path), zap.Int("products", cat.Len()))

	// Build the vector index before serving traffic. Search cannot work
	// without it, so any failure here is fatal.
	idx := indexeruc.New(store, embedder, logger, indexeruc.Options{
		Rebuild:         cfg.Index.Rebuild,
		BatchSize:       cfg.Index.BatchSize,
		Dimensions:      cfg.Embedding.Dimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})
	if err := idx.Run(ctx, cat.All()); err != nil {
		logger.Fatal("Failed to build product index", zap.Error(err))
	}

	semIndex := semindex.New(store, embedder)
	lists := liststore.New(store)

	searchSvc := searchuc.New(cat, semIndex, match.Scorer{}, logger).
		WithOverfetch(cfg.Search.OverfetchFactor, cfg.Search.OverfetchFloor)
	recommendSvc := recommenduc.New(cat, semIndex, logger).
		WithHeadroom(cfg.Search.RecommendHeadroom)
	cartSvc := cartuc.New(cat, lists)
	healthSvc := healthuc.New(store, baseEmbedder)

	server := chiTransport.NewServer(
		cat, searchSvc, recommendSvc, cartSvc, healthSvc, logger, cfg.Search.DefaultTopK,
	)

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

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached. The base
// provider is returned separately for health checks.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	store db.Store,
	logger *zap.Logger,
) (*openaiEmb.Embedder, domain.Embedder) {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}
	return base, embedder
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
						"status":  "error",
						"message": "internal error",
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

			// Per-request logger with request_id
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
