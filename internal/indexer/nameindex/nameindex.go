// Package nameindex maps lowercase words to the set of document names
// containing them. It is the first of the two on-disk indexes: the resolver
// asks it which documents a claim word could refer to, then validates each
// candidate against the claim.
package nameindex

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/factive/claimsearch/internal/indexer/tokenizer"
	"github.com/factive/claimsearch/internal/indexer/tree"
)

// nameSet is the payload stored per word: the distinct document names that
// contain it.
type nameSet map[string]struct{}

type nameValues struct{}

func (nameValues) Merge(existing nameSet, add nameSet) nameSet {
	if existing == nil {
		return add
	}
	for name := range add {
		existing[name] = struct{}{}
	}
	return existing
}

func (nameValues) Len(v nameSet) int {
	return len(v)
}

func (nameValues) Encode(w io.Writer, v nameSet) error {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

// Index accumulates the word → names mapping in memory during a build.
type Index struct {
	tree *tree.Tree[nameSet]
}

// New creates an empty name index.
func New() *Index {
	return &Index{tree: tree.New[nameSet](nameValues{})}
}

// Add registers name under each of its distinct lowercase words.
func (ix *Index) Add(name string) {
	for _, word := range tokenizer.NameWords(name) {
		ix.tree.Insert(word, nameSet{name: {}})
	}
}

// Flush persists the index under dir and releases its memory.
func (ix *Index) Flush(dir string) error {
	return ix.tree.Flush(dir)
}

// Stats returns the tree's construction counters.
func (ix *Index) Stats() tree.Stats {
	return ix.tree.Stats()
}

// Store reads a persisted name index.
type Store struct {
	Dir string
}

// Names returns the document names indexed under word, sorted. Lookups are
// case-insensitive; an unindexed word yields (nil, nil).
func (s Store) Names(word string) ([]string, error) {
	return tree.Lookup(s.Dir, strings.ToLower(word))
}
