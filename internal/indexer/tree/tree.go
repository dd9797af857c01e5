// Package tree implements the hash-sharded index tree shared by the name
// index (word → document names) and the content index (document name →
// sentences). Keys are addressed by successive hex digits of their SHA-1
// digest; leaves hold key → payload maps and are split into sixteen children
// once their projected file size exceeds FileCapacity.
package tree

import "io"

// FileCapacity is the maximum number of lines a persisted leaf file may hold
// before the leaf is split. A leaf whose single dominant key already exceeds
// this on its own is left oversized, since every occurrence of one key hashes
// into the same child and splitting again would never relieve it.
const FileCapacity = 20000

// Values describes how a tree merges, measures, and serialises its payloads.
type Values[V any] interface {
	// Merge combines a new contribution into the payload stored for a key.
	// The zero value of V is passed for keys seen for the first time.
	Merge(existing V, add V) V
	// Len is the number of lines the payload serialises to.
	Len(v V) int
	// Encode writes the payload lines, each newline-terminated.
	Encode(w io.Writer, v V) error
}

// node is either a *leaf or an *internal.
type node[V any] interface {
	isNode()
}

// leaf stores key → payload entries plus the projected line count of the
// file it would flush to (one header line per key, one line per payload
// entry).
type leaf[V any] struct {
	entries map[string]V
	total   int
}

// internal routes descent by one hex digit of the key digest.
type internal[V any] struct {
	children map[byte]node[V]
}

func (*leaf[V]) isNode()     {}
func (*internal[V]) isNode() {}

// Stats summarises a tree's construction, reported once per build phase.
type Stats struct {
	Keys   int // distinct keys inserted
	Lines  int // total payload lines across all leaves
	Splits int // leaf-to-internal conversions
	Leaves int // leaf files written by the last Flush
}

// Tree is an in-memory index tree under construction. It is not safe for
// concurrent use; the builder owns it exclusively until Flush.
type Tree[V any] struct {
	root  *internal[V]
	vals  Values[V]
	stats Stats
}

// New creates an empty tree using vals for payload semantics.
func New[V any](vals Values[V]) *Tree[V] {
	return &Tree[V]{
		root: &internal[V]{children: make(map[byte]node[V])},
		vals: vals,
	}
}

// Stats returns construction counters accumulated so far.
func (t *Tree[V]) Stats() Stats {
	return t.stats
}

// Insert merges add into the payload stored for key, descending by the hex
// digits of the key's digest and splitting the target leaf if it overflows.
func (t *Tree[V]) Insert(key string, add V) {
	t.insert(t.root, Digest(key), 0, key, add)
}

func (t *Tree[V]) insert(n *internal[V], digest string, depth int, key string, add V) {
	digit := digest[depth]
	child, ok := n.children[digit]
	if !ok {
		child = &leaf[V]{entries: make(map[string]V)}
		n.children[digit] = child
	}
	switch c := child.(type) {
	case *internal[V]:
		t.insert(c, digest, depth+1, key, add)
	case *leaf[V]:
		t.insertLeaf(n, c, digest, depth, key, add)
	}
}

func (t *Tree[V]) insertLeaf(parent *internal[V], lf *leaf[V], digest string, depth int, key string, add V) {
	existing, ok := lf.entries[key]
	if !ok {
		t.stats.Keys++
		lf.total++ // header line
	}
	merged := t.vals.Merge(existing, add)
	grown := t.vals.Len(merged) - t.vals.Len(existing)
	lf.entries[key] = merged
	lf.total += grown
	t.stats.Lines += grown

	// Split unless the key that just grew would alone overflow a fresh
	// leaf, or the digest is exhausted (all remaining keys collide).
	if lf.total > FileCapacity && t.vals.Len(merged)+1 <= FileCapacity && depth+1 < len(digest) {
		parent.children[digest[depth]] = t.splitLeaf(lf, depth+1)
		t.stats.Splits++
	}
}

// splitLeaf redistributes every entry of lf into new child leaves selected
// by the hex digit of each key's digest at childDepth.
func (t *Tree[V]) splitLeaf(lf *leaf[V], childDepth int) *internal[V] {
	out := &internal[V]{children: make(map[byte]node[V])}
	for key, payload := range lf.entries {
		digit := Digest(key)[childDepth]
		child, ok := out.children[digit].(*leaf[V])
		if !ok {
			child = &leaf[V]{entries: make(map[string]V)}
			out.children[digit] = child
		}
		child.entries[key] = payload
		child.total += t.vals.Len(payload) + 1
	}
	return out
}
