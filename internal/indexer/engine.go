// Package indexer builds the two persisted index trees from the raw corpus:
// a name index (word → document names) and a content index (document name →
// sentences). The build is two single-threaded passes over the corpus so
// only one tree is in memory at a time.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/factive/claimsearch/internal/corpus"
	"github.com/factive/claimsearch/internal/indexer/docindex"
	"github.com/factive/claimsearch/internal/indexer/nameindex"
	"github.com/factive/claimsearch/pkg/config"
	"github.com/factive/claimsearch/pkg/errors"
	"github.com/factive/claimsearch/pkg/metrics"
)

// BuildSummary reports what a completed build produced.
type BuildSummary struct {
	Words         int           `json:"words"`
	Documents     int           `json:"documents"`
	NameLeafFiles int           `json:"nameLeafFiles"`
	DocLeafFiles  int           `json:"docLeafFiles"`
	CorpusFiles   int           `json:"corpusFiles"`
	Duration      time.Duration `json:"duration"`
}

// Builder runs the two-phase index build.
type Builder struct {
	cfg     *config.Config
	reader  *corpus.Reader
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewBuilder creates a Builder. metrics may be nil when no collector is
// registered (tests, one-shot CLI runs).
func NewBuilder(cfg *config.Config, m *metrics.Metrics, log *slog.Logger) *Builder {
	return &Builder{
		cfg:     cfg,
		reader:  corpus.NewReader(cfg.Corpus),
		metrics: m,
		log:     log.With(slog.String("component", "indexer")),
	}
}

// Run executes both build phases. It refuses to run when either output
// directory already holds entries, since a partial previous build is
// indistinguishable from a complete one on disk.
func (b *Builder) Run(ctx context.Context) (*BuildSummary, error) {
	for _, dir := range []string{b.cfg.Index.NameIndexDir, b.cfg.Index.DocIndexDir} {
		if err := ensureEmpty(dir); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	summary := &BuildSummary{CorpusFiles: b.reader.FileCount()}

	if err := b.buildNameIndex(ctx, summary); err != nil {
		return nil, fmt.Errorf("%w: name index: %v", errors.ErrBuildAborted, err)
	}
	if err := b.buildDocIndex(ctx, summary); err != nil {
		return nil, fmt.Errorf("%w: content index: %v", errors.ErrBuildAborted, err)
	}

	summary.Duration = time.Since(start)
	b.log.Info("index build complete",
		slog.Int("words", summary.Words),
		slog.Int("documents", summary.Documents),
		slog.Int("name_leaf_files", summary.NameLeafFiles),
		slog.Int("doc_leaf_files", summary.DocLeafFiles),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// buildNameIndex is phase one: one pass over the corpus registering every
// document name under each of its words. Corpus lines for one document are
// contiguous, so a name is added once per run of lines.
func (b *Builder) buildNameIndex(ctx context.Context, summary *BuildSummary) error {
	b.log.Info("building name index", slog.String("dir", b.cfg.Index.NameIndexDir))
	ix := nameindex.New()
	prev := ""
	lines := 0
	err := b.reader.Walk(ctx, func(fileNo int, rec corpus.Record) error {
		lines++
		b.reportProgress("name index", fileNo, lines)
		if rec.DocName == prev {
			return nil
		}
		prev = rec.DocName
		ix.Add(rec.DocName)
		return nil
	})
	if err != nil {
		return err
	}
	if err := ix.Flush(b.cfg.Index.NameIndexDir); err != nil {
		return err
	}

	stats := ix.Stats()
	summary.Words = stats.Keys
	summary.NameLeafFiles = stats.Leaves
	if b.metrics != nil {
		b.metrics.WordsIndexedTotal.Add(float64(stats.Keys))
		b.metrics.LeafFilesWritten.WithLabelValues("name").Add(float64(stats.Leaves))
		b.metrics.LeafSplitsTotal.WithLabelValues("name").Add(float64(stats.Splits))
	}
	b.log.Info("name index flushed",
		slog.Int("words", stats.Keys),
		slog.Int("leaf_files", stats.Leaves),
		slog.Int("splits", stats.Splits),
	)
	return nil
}

// buildDocIndex is phase two: a second pass accumulating each document's
// sentences and inserting the document when its run of lines ends. Sentence
// text has its bracket escapes restored before storage.
func (b *Builder) buildDocIndex(ctx context.Context, summary *BuildSummary) error {
	b.log.Info("building content index", slog.String("dir", b.cfg.Index.DocIndexDir))
	ix := docindex.New()
	docs := 0
	prev := ""
	var pending []docindex.Sentence
	flushDoc := func() {
		if prev == "" {
			return
		}
		ix.Add(prev, pending)
		docs++
		pending = nil
		if b.metrics != nil {
			b.metrics.DocsIndexedTotal.Inc()
		}
	}

	lines := 0
	err := b.reader.Walk(ctx, func(fileNo int, rec corpus.Record) error {
		lines++
		b.reportProgress("content index", fileNo, lines)
		if rec.DocName != prev {
			flushDoc()
			prev = rec.DocName
		}
		if rec.SentenceNo >= 0 {
			pending = append(pending, docindex.Sentence{
				No:   rec.SentenceNo,
				Text: corpus.RestoreBrackets(rec.Text),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	flushDoc()
	if err := ix.Flush(b.cfg.Index.DocIndexDir); err != nil {
		return err
	}

	stats := ix.Stats()
	summary.Documents = docs
	summary.DocLeafFiles = stats.Leaves
	if b.metrics != nil {
		b.metrics.LeafFilesWritten.WithLabelValues("doc").Add(float64(stats.Leaves))
		b.metrics.LeafSplitsTotal.WithLabelValues("doc").Add(float64(stats.Splits))
	}
	b.log.Info("content index flushed",
		slog.Int("documents", docs),
		slog.Int("leaf_files", stats.Leaves),
		slog.Int("splits", stats.Splits),
	)
	return nil
}

func (b *Builder) reportProgress(phase string, fileNo int, lines int) {
	interval := b.cfg.Index.ProgressInterval
	if interval <= 0 || lines%interval != 0 {
		return
	}
	b.log.Info("build progress",
		slog.String("phase", phase),
		slog.Int("file", fileNo),
		slog.Int("lines", lines),
	)
}

// ensureEmpty accepts a missing or empty directory and rejects anything else.
func ensureEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking output directory %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: output directory %s is not empty", errors.ErrInvalidInput, dir)
	}
	return nil
}
