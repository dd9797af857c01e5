// searchd serves the query API over the persisted indexes: word → document
// names, document → sentences, and claim → document names.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/factive/claimsearch/internal/analytics"
	"github.com/factive/claimsearch/internal/indexer/docindex"
	"github.com/factive/claimsearch/internal/indexer/nameindex"
	"github.com/factive/claimsearch/internal/resolver"
	"github.com/factive/claimsearch/internal/searchd/handler"
	"github.com/factive/claimsearch/pkg/config"
	"github.com/factive/claimsearch/pkg/health"
	"github.com/factive/claimsearch/pkg/kafka"
	"github.com/factive/claimsearch/pkg/logger"
	"github.com/factive/claimsearch/pkg/metrics"
	"github.com/factive/claimsearch/pkg/middleware"
	"github.com/factive/claimsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("searchd")

	if err := run(cfg, log); err != nil {
		log.Error("searchd exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, dir := range []string{cfg.Index.NameIndexDir, cfg.Index.DocIndexDir} {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("index directory %s is not readable: %w", dir, err)
		}
	}
	names := nameindex.Store{Dir: cfg.Index.NameIndexDir}
	docs := docindex.Store{Dir: cfg.Index.DocIndexDir}

	stopWords, err := resolver.LoadStopWords(cfg.Resolver.StopWordsFile)
	if err != nil {
		return err
	}

	m := metrics.New()

	// Redis is an accelerator, not a dependency: resolve queries work
	// without it.
	var cache *redis.Client
	if c, err := redis.NewClient(cfg.Redis); err != nil {
		log.Warn("redis unavailable, resolve cache disabled", slog.Any("error", err))
	} else {
		cache = c
		defer cache.Close()
	}

	base := resolver.New(names, stopWords, cfg.Resolver.MaxNamesPerWord, log)
	cached := resolver.NewCached(base, cache, cfg.Redis.CacheTTL, m, log)

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 100, 5*time.Second, log)
		collector.Start()
		defer collector.Close()

		// A completed build elsewhere means every cached resolution may
		// be stale.
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete,
			func(ctx context.Context, key, value []byte) error {
				deleted, err := cached.Invalidate(ctx)
				if err != nil {
					return err
				}
				log.Info("resolve cache invalidated after index build",
					slog.Int64("deleted", deleted))
				return nil
			})
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error("index-complete consumer stopped", slog.Any("error", err))
			}
		}()
	}

	checker := health.NewChecker()
	checker.Register("name-index", func(ctx context.Context) health.ComponentHealth {
		if _, err := os.Stat(cfg.Index.NameIndexDir); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("doc-index", func(ctx context.Context) health.ComponentHealth {
		if _, err := os.Stat(cfg.Index.DocIndexDir); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if cache == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "cache disabled"}
		}
		if err := cache.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(names, docs, cached, collector, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/names", h.Names)
	mux.HandleFunc("GET /api/v1/document", h.Document)
	mux.HandleFunc("GET /api/v1/resolve", h.Resolve)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var root http.Handler = mux
	root = middleware.Timeout(cfg.Server.WriteTimeout)(root)
	root = middleware.Metrics(m)(root)
	root = middleware.RequestID(root)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var stopMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		stopMetrics = metrics.StartServer(cfg.Metrics.Port)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("searchd listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if stopMetrics != nil {
		if err := stopMetrics(shutdownCtx); err != nil {
			log.Warn("metrics server shutdown failed", slog.Any("error", err))
		}
	}
	return nil
}
