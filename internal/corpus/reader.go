// Package corpus reads the raw wiki-pages-text files: numbered text files
// whose lines are "<docname> <sentno> <tokens...>". Document names and
// sentence text carry escaped round brackets (-LRB- / -RRB-) which are
// restored to "(" and ")".
package corpus

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/factive/claimsearch/pkg/config"
)

// maxCorpusLine bounds a single corpus line. Sentences are tokenised prose
// and occasionally run long.
const maxCorpusLine = 4 * 1024 * 1024

// Record is one parsed corpus line. SentenceNo is -1 when the second field
// is not a number; such lines still carry a valid document name and are
// indexed by name only.
type Record struct {
	DocName    string
	SentenceNo int
	Text       string
}

// RestoreBrackets rewrites the corpus bracket escapes back to literal
// parentheses.
func RestoreBrackets(s string) string {
	s = strings.ReplaceAll(s, "-LRB-", "(")
	return strings.ReplaceAll(s, "-RRB-", ")")
}

// Reader walks the numbered corpus files of one directory.
type Reader struct {
	cfg config.CorpusConfig
}

// NewReader creates a Reader over the configured corpus files.
func NewReader(cfg config.CorpusConfig) *Reader {
	return &Reader{cfg: cfg}
}

// FileCount returns how many corpus files the walk covers.
func (r *Reader) FileCount() int {
	return r.cfg.EndFile - r.cfg.StartFile + 1
}

// Walk streams every record of every corpus file in file order, invoking fn
// per record. It stops at the first IO error, the first fn error, or context
// cancellation.
func (r *Reader) Walk(ctx context.Context, fn func(fileNo int, rec Record) error) error {
	for fileNo := r.cfg.StartFile; fileNo <= r.cfg.EndFile; fileNo++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.walkFile(ctx, fileNo, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) walkFile(ctx context.Context, fileNo int, fn func(int, Record) error) error {
	path := filepath.Join(r.cfg.Dir, fmt.Sprintf(r.cfg.FilePattern, fileNo))
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening corpus file %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxCorpusLine)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, ok := parseLine(sc.Text())
		if !ok {
			continue
		}
		if err := fn(fileNo, rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading corpus file %s: %w", path, err)
	}
	return nil
}

// parseLine splits "<docname> <sentno> <tokens...>". Lines without at least
// a name and a second field are skipped.
func parseLine(line string) (Record, bool) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || parts[0] == "" {
		return Record{}, false
	}
	rec := Record{
		DocName:    RestoreBrackets(parts[0]),
		SentenceNo: -1,
	}
	if no, err := strconv.Atoi(parts[1]); err == nil {
		rec.SentenceNo = no
		if len(parts) == 3 {
			rec.Text = parts[2]
		}
	}
	return rec, true
}
