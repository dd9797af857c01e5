package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/factive/claimsearch/pkg/config"
)

func writeCorpusFile(t *testing.T, dir string, fileNo int, lines string) {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("wiki-%03d.txt", fileNo))
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("writing corpus file: %v", err)
	}
}

func TestRestoreBrackets(t *testing.T) {
	got := RestoreBrackets("Soul_Food_-LRB-film-RRB-")
	if got != "Soul_Food_(film)" {
		t.Fatalf("RestoreBrackets = %q", got)
	}
	if RestoreBrackets("plain") != "plain" {
		t.Fatal("RestoreBrackets altered a string without escapes")
	}
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, 1,
		"Soul_Food 0 Soul Food is a film .\n"+
			"Soul_Food 1 It was released in 1997 .\n"+
			"Soul_Food_-LRB-film-RRB- 0 The film version .\n")
	writeCorpusFile(t, dir, 2,
		"Elon_Musk 0 Elon Musk is an entrepreneur .\n"+
			"Elon_Musk notanumber trailing registration line\n")

	r := NewReader(config.CorpusConfig{
		Dir:         dir,
		FilePattern: "wiki-%03d.txt",
		StartFile:   1,
		EndFile:     2,
	})
	if got := r.FileCount(); got != 2 {
		t.Fatalf("FileCount = %d, want 2", got)
	}

	var recs []Record
	err := r.Walk(context.Background(), func(fileNo int, rec Record) error {
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("Walk yielded %d records, want 5", len(recs))
	}
	if recs[2].DocName != "Soul_Food_(film)" {
		t.Errorf("bracket escapes not restored in name: %q", recs[2].DocName)
	}
	if recs[0].SentenceNo != 0 || recs[0].Text != "Soul Food is a film ." {
		t.Errorf("record 0 = %+v", recs[0])
	}
	// Non-numeric sentence field still registers the document name.
	last := recs[4]
	if last.DocName != "Elon_Musk" || last.SentenceNo != -1 || last.Text != "" {
		t.Errorf("non-numeric sentence record = %+v", last)
	}
}

func TestWalkMissingFile(t *testing.T) {
	r := NewReader(config.CorpusConfig{
		Dir:         t.TempDir(),
		FilePattern: "wiki-%03d.txt",
		StartFile:   1,
		EndFile:     1,
	})
	err := r.Walk(context.Background(), func(int, Record) error { return nil })
	if err == nil {
		t.Fatal("Walk over missing file succeeded, want error")
	}
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, 1, "A 0 first\nB 0 second\n")

	r := NewReader(config.CorpusConfig{
		Dir: dir, FilePattern: "wiki-%03d.txt", StartFile: 1, EndFile: 1,
	})
	sentinel := errors.New("stop")
	seen := 0
	err := r.Walk(context.Background(), func(int, Record) error {
		seen++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Walk = %v, want sentinel", err)
	}
	if seen != 1 {
		t.Fatalf("callback ran %d times after error, want 1", seen)
	}
}

func TestWalkHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, 1, "A 0 line\n")
	writeCorpusFile(t, dir, 2, "B 0 line\n")

	r := NewReader(config.CorpusConfig{
		Dir: dir, FilePattern: "wiki-%03d.txt", StartFile: 1, EndFile: 2,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Walk(ctx, func(int, Record) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Walk on cancelled context = %v, want context.Canceled", err)
	}
}
