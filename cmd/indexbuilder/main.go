// indexbuilder runs the one-shot batch build: it reads the corpus twice,
// persists the name index and the content index, records the build in the
// audit store, and announces completion on Kafka.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/factive/claimsearch/internal/audit"
	"github.com/factive/claimsearch/internal/indexer"
	"github.com/factive/claimsearch/pkg/config"
	"github.com/factive/claimsearch/pkg/kafka"
	"github.com/factive/claimsearch/pkg/logger"
	"github.com/factive/claimsearch/pkg/metrics"
	"github.com/factive/claimsearch/pkg/postgres"
	"github.com/factive/claimsearch/pkg/resilience"
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
	log := logger.WithComponent("indexbuilder")

	if err := run(cfg, log); err != nil {
		log.Error("build failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var stopMetrics func(context.Context) error
	m := metrics.New()
	if cfg.Metrics.Enabled {
		stopMetrics = metrics.StartServer(cfg.Metrics.Port)
	}

	builder := indexer.NewBuilder(cfg, m, log)
	summary, err := builder.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Postgres.Enabled {
		if err := recordBuild(ctx, cfg, summary); err != nil {
			// The indexes are already on disk and usable; losing the
			// audit row is not worth failing the build over.
			log.Warn("audit record not written", slog.Any("error", err))
		}
	}
	if cfg.Kafka.Enabled {
		if err := announceBuild(ctx, cfg, summary); err != nil {
			log.Warn("index-complete event not published", slog.Any("error", err))
		}
	}

	if stopMetrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stopMetrics(shutdownCtx)
	}
	return nil
}

func recordBuild(ctx context.Context, cfg *config.Config, summary *indexer.BuildSummary) error {
	client, err := postgres.New(cfg.Postgres)
	if err != nil {
		return err
	}
	defer client.Close()

	store := audit.NewStore(client)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err = store.RecordBuild(ctx, audit.BuildRecord{
		CorpusDir:     cfg.Corpus.Dir,
		StartFile:     cfg.Corpus.StartFile,
		EndFile:       cfg.Corpus.EndFile,
		Words:         summary.Words,
		Documents:     summary.Documents,
		NameLeafFiles: summary.NameLeafFiles,
		DocLeafFiles:  summary.DocLeafFiles,
		Duration:      summary.Duration,
	})
	return err
}

func announceBuild(ctx context.Context, cfg *config.Config, summary *indexer.BuildSummary) error {
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer producer.Close()

	event := kafka.Event{
		Key:   cfg.Index.NameIndexDir,
		Value: summary,
	}
	return resilience.Retry(ctx, "publish-index-complete", resilience.RetryConfig{}, func() error {
		return producer.Publish(ctx, event)
	})
}
