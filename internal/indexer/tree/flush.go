package tree

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Flush persists the tree under dir: every internal node becomes a directory
// named by a single hex digit, every leaf a file "<digit>.txt" holding
// "<key> <count>" headers followed by count payload lines. The traversal is
// post-order and releases each subtree from memory as soon as it is on disk,
// so peak memory stays bounded by one root-to-leaf path plus the tree not
// yet flushed.
//
// A flush interrupted partway leaves a partial layout with no marker; the
// output directory must be treated as corrupt and rebuilt.
func (t *Tree[V]) Flush(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index root %s: %w", dir, err)
	}
	if err := t.flushInternal(t.root, dir); err != nil {
		return err
	}
	t.root = &internal[V]{children: make(map[byte]node[V])}
	return nil
}

func (t *Tree[V]) flushInternal(n *internal[V], dir string) error {
	for digit, child := range n.children {
		name := string(rune(digit))
		switch c := child.(type) {
		case *internal[V]:
			sub := filepath.Join(dir, name)
			if err := os.Mkdir(sub, 0o755); err != nil {
				return fmt.Errorf("creating shard directory %s: %w", sub, err)
			}
			if err := t.flushInternal(c, sub); err != nil {
				return err
			}
		case *leaf[V]:
			if err := t.flushLeaf(c, filepath.Join(dir, name+".txt")); err != nil {
				return err
			}
			t.stats.Leaves++
		}
		delete(n.children, digit)
	}
	return nil
}

func (t *Tree[V]) flushLeaf(lf *leaf[V], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating leaf file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	keys := make([]string, 0, len(lf.entries))
	for key := range lf.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		payload := lf.entries[key]
		if _, err := fmt.Fprintf(w, "%s %d\n", key, t.vals.Len(payload)); err != nil {
			f.Close()
			return fmt.Errorf("writing leaf header in %s: %w", path, err)
		}
		if err := t.vals.Encode(w, payload); err != nil {
			f.Close()
			return fmt.Errorf("writing payload for %q in %s: %w", key, path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing leaf file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing leaf file %s: %w", path, err)
	}
	lf.entries = nil
	return nil
}
