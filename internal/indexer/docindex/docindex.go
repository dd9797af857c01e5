// Package docindex maps document names to their numbered sentences. It is
// the second of the two on-disk indexes: once the resolver has settled on a
// document name, this index yields the document body.
package docindex

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/factive/claimsearch/internal/indexer/tree"
	"github.com/factive/claimsearch/pkg/errors"
)

// Sentence is one numbered line of a document.
type Sentence struct {
	No   int
	Text string
}

// sentenceMap is the payload stored per document name: sentence number →
// text. A sentence number seen twice keeps the later text.
type sentenceMap map[int]string

type sentenceValues struct{}

func (sentenceValues) Merge(existing sentenceMap, add sentenceMap) sentenceMap {
	if existing == nil {
		return add
	}
	for no, text := range add {
		existing[no] = text
	}
	return existing
}

func (sentenceValues) Len(v sentenceMap) int {
	return len(v)
}

func (sentenceValues) Encode(w io.Writer, v sentenceMap) error {
	nos := make([]int, 0, len(v))
	for no := range v {
		nos = append(nos, no)
	}
	sort.Ints(nos)
	for _, no := range nos {
		if _, err := fmt.Fprintf(w, "%d %s\n", no, v[no]); err != nil {
			return err
		}
	}
	return nil
}

// Index accumulates the name → sentences mapping in memory during a build.
type Index struct {
	tree *tree.Tree[sentenceMap]
}

// New creates an empty content index.
func New() *Index {
	return &Index{tree: tree.New[sentenceMap](sentenceValues{})}
}

// Add stores the sentences of one document under its name.
func (ix *Index) Add(name string, sentences []Sentence) {
	payload := make(sentenceMap, len(sentences))
	for _, s := range sentences {
		payload[s.No] = s.Text
	}
	ix.tree.Insert(name, payload)
}

// Flush persists the index under dir and releases its memory.
func (ix *Index) Flush(dir string) error {
	return ix.tree.Flush(dir)
}

// Stats returns the tree's construction counters.
func (ix *Index) Stats() tree.Stats {
	return ix.tree.Stats()
}

// Store reads a persisted content index.
type Store struct {
	Dir string
}

// Content returns the sentences of the named document in ascending sentence
// order. An unindexed name yields (nil, nil).
func (s Store) Content(name string) ([]Sentence, error) {
	lines, err := tree.Lookup(s.Dir, name)
	if err != nil || lines == nil {
		return nil, err
	}
	sentences := make([]Sentence, 0, len(lines))
	for _, line := range lines {
		no, text, err := parseSentence(line)
		if err != nil {
			return nil, fmt.Errorf("%w: document %q: %v", errors.ErrCorruptLeaf, name, err)
		}
		sentences = append(sentences, Sentence{No: no, Text: text})
	}
	return sentences, nil
}

// parseSentence splits a "<sentno> <text>" payload line. The text may be
// empty for blank corpus sentences.
func parseSentence(line string) (int, string, error) {
	idx := strings.IndexByte(line, ' ')
	field := line
	rest := ""
	if idx >= 0 {
		field, rest = line[:idx], line[idx+1:]
	}
	no, err := strconv.Atoi(field)
	if err != nil {
		return 0, "", fmt.Errorf("malformed sentence line %q", line)
	}
	return no, rest, nil
}
