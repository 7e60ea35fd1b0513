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

	"github.com/otakulab/anirec/internal/config"
	"github.com/otakulab/anirec/internal/db"
	dbMemory "github.com/otakulab/anirec/internal/db/memory"
	dbRedis "github.com/otakulab/anirec/internal/db/redis"
	logpkg "github.com/otakulab/anirec/internal/logger"
	"github.com/otakulab/anirec/internal/metrics"
	catalogrepo "github.com/otakulab/anirec/internal/repository/catalog"
	"github.com/otakulab/anirec/internal/repository/reccache"
	chiTransport "github.com/otakulab/anirec/internal/transport/chi"
	discoveruc "github.com/otakulab/anirec/internal/usecase/discover"
	healthuc "github.com/otakulab/anirec/internal/usecase/health"
	recommenduc "github.com/otakulab/anirec/internal/usecase/recommend"
	suggestuc "github.com/otakulab/anirec/internal/usecase/suggest"
	"github.com/otakulab/anirec/internal/version"
	"github.com/otakulab/anirec/web"
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

	logger.Info("Starting anirec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("data_dir", cfg.Catalog.DataDir),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	ctx := context.Background()

	// Load the anime catalog before accepting traffic
	loader := catalogrepo.NewLoader(cfg.Catalog.DataDir, cfg.Catalog.Download, cfg.Catalog.SourceURLs, logger)
	catalog, err := loader.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.Int("titles", catalog.Len()))

	// Create cache store based on driver
	var store db.Store
	switch cfg.Cache.Driver {
	case "none":
		store = dbMemory.NewStore()
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
	default:
		logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache not ready", zap.Error(err))
	}

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	recCache := reccache.New(
		store,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		cfg.Cache.KeyPrefix,
		metrics.RecommendCacheTotal,
		logger,
	)

	// Create use case services
	suggestSvc := suggestuc.New(catalog, cfg.Suggest.Limit)

	recParams := recommenduc.DefaultParams()
	recParams.JaccardThreshold = cfg.Recommend.JaccardThreshold
	recParams.Components = cfg.Recommend.SVDComponents
	recommendSvc := recommenduc.New(catalog, recParams, logger).WithCache(recCache)

	discParams := discoveruc.DefaultParams()
	discParams.Components = cfg.Discover.SVDComponents
	discParams.DefaultLimit = cfg.Discover.DefaultLimit
	discoverSvc := discoveruc.New(catalog, discParams, logger)

	healthSvc := healthuc.New(catalog, store)

	// Create chi server
	server := chiTransport.NewServer(suggestSvc, recommendSvc, discoverSvc, healthSvc, web.Handler(), logger)

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
						"code":    "internal_error",
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
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
