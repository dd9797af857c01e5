package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/factive/claimsearch/internal/indexer/docindex"
	"github.com/factive/claimsearch/internal/indexer/nameindex"
	"github.com/factive/claimsearch/pkg/config"
	apperrors "github.com/factive/claimsearch/pkg/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	corpusDir := filepath.Join(root, "corpus")
	if err := os.Mkdir(corpusDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		Corpus: config.CorpusConfig{
			Dir:         corpusDir,
			FilePattern: "wiki-%03d.txt",
			StartFile:   1,
			EndFile:     1,
		},
		Index: config.IndexConfig{
			NameIndexDir: filepath.Join(root, "names"),
			DocIndexDir:  filepath.Join(root, "docs"),
		},
	}
}

func writeCorpus(t *testing.T, cfg *config.Config, fileNo int, lines string) {
	t.Helper()
	path := filepath.Join(cfg.Corpus.Dir, fmt.Sprintf(cfg.Corpus.FilePattern, fileNo))
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuilderRun(t *testing.T) {
	cfg := testConfig(t)
	writeCorpus(t, cfg, 1,
		"Soul 0 Soul is a concept .\n"+
			"Soul_Food 0 Soul Food is a film .\n"+
			"Soul_Food 1 It was released in 1997 .\n"+
			"Soul_Food_-LRB-film-RRB- 0 A film about -LRB- soul -RRB- food .\n"+
			"Elon_Musk 0 Elon Musk founded SpaceX .\n")

	builder := NewBuilder(cfg, nil, slog.Default())
	summary, err := builder.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Documents != 4 {
		t.Errorf("Documents = %d, want 4", summary.Documents)
	}
	if summary.Words == 0 || summary.NameLeafFiles == 0 || summary.DocLeafFiles == 0 {
		t.Errorf("summary missing counts: %+v", summary)
	}

	names := nameindex.Store{Dir: cfg.Index.NameIndexDir}
	got, err := names.Names("soul")
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	want := []string{"Soul", "Soul_Food", "Soul_Food_(film)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names(soul) = %v, want %v", got, want)
	}

	docs := docindex.Store{Dir: cfg.Index.DocIndexDir}
	sentences, err := docs.Content("Soul_Food_(film)")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if len(sentences) != 1 {
		t.Fatalf("Content returned %d sentences, want 1", len(sentences))
	}
	// Bracket escapes inside sentence text are restored too.
	if sentences[0].Text != "A film about ( soul ) food ." {
		t.Errorf("sentence text = %q", sentences[0].Text)
	}

	multi, err := docs.Content("Soul_Food")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if len(multi) != 2 || multi[0].No != 0 || multi[1].No != 1 {
		t.Errorf("Content(Soul_Food) = %+v", multi)
	}
}

func TestBuilderRefusesNonEmptyOutput(t *testing.T) {
	cfg := testConfig(t)
	writeCorpus(t, cfg, 1, "Doc 0 text\n")
	if err := os.MkdirAll(cfg.Index.NameIndexDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Index.NameIndexDir, "leftover"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	builder := NewBuilder(cfg, nil, slog.Default())
	_, err := builder.Run(context.Background())
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("Run on non-empty output = %v, want ErrInvalidInput", err)
	}
}

func TestBuilderFailsOnMissingCorpus(t *testing.T) {
	cfg := testConfig(t)

	builder := NewBuilder(cfg, nil, slog.Default())
	_, err := builder.Run(context.Background())
	if !errors.Is(err, apperrors.ErrBuildAborted) {
		t.Fatalf("Run on missing corpus = %v, want ErrBuildAborted", err)
	}
}

func TestBuilderHonorsCancellation(t *testing.T) {
	cfg := testConfig(t)
	writeCorpus(t, cfg, 1, "Doc 0 text\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	builder := NewBuilder(cfg, nil, slog.Default())
	if _, err := builder.Run(ctx); err == nil {
		t.Fatal("Run on cancelled context succeeded, want error")
	}
}
