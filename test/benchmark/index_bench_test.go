// Package benchmark contains Go benchmarks for the index trees and the
// claim resolver, measuring build throughput and lookup latency.
package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/factive/claimsearch/internal/indexer/docindex"
	"github.com/factive/claimsearch/internal/indexer/nameindex"
	"github.com/factive/claimsearch/internal/indexer/tree"
	"github.com/factive/claimsearch/internal/resolver"
)

// BenchmarkDigest measures the hash path router on a typical word key.
func BenchmarkDigest(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = tree.Digest("soul")
	}
}

// BenchmarkNameIndexAdd measures per-document insert throughput into the
// in-memory name index.
func BenchmarkNameIndexAdd(b *testing.B) {
	ix := nameindex.New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Add(fmt.Sprintf("Document_Name_%d", i))
	}
}

// BenchmarkNameIndexLookup measures single-word lookup latency over a
// persisted index of 10 000 documents.
func BenchmarkNameIndexLookup(b *testing.B) {
	dir := b.TempDir()
	ix := nameindex.New()
	for i := 0; i < 10000; i++ {
		ix.Add(fmt.Sprintf("Common_Word_Document_%d", i))
	}
	if err := ix.Flush(dir); err != nil {
		b.Fatalf("Flush: %v", err)
	}
	store := nameindex.Store{Dir: dir}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Names("common"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDocIndexContent measures document content retrieval from a
// persisted content index.
func BenchmarkDocIndexContent(b *testing.B) {
	dir := b.TempDir()
	ix := docindex.New()
	sentences := make([]docindex.Sentence, 50)
	for i := range sentences {
		sentences[i] = docindex.Sentence{No: i, Text: "a sentence with a handful of tokens in it ."}
	}
	for i := 0; i < 1000; i++ {
		ix.Add(fmt.Sprintf("Document_%d", i), sentences)
	}
	if err := ix.Flush(dir); err != nil {
		b.Fatalf("Flush: %v", err)
	}
	store := docindex.Store{Dir: dir}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Content("Document_500"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkResolve measures full claim resolution, including the name-index
// lookups it issues.
func BenchmarkResolve(b *testing.B) {
	dir := b.TempDir()
	ix := nameindex.New()
	ix.Add("Soul")
	ix.Add("Soul_Food")
	ix.Add("Elon_Musk")
	ix.Add("SpaceX")
	for i := 0; i < 5000; i++ {
		ix.Add(fmt.Sprintf("Filler_Document_%d", i))
	}
	if err := ix.Flush(dir); err != nil {
		b.Fatalf("Flush: %v", err)
	}
	res := resolver.New(nameindex.Store{Dir: dir}, resolver.DefaultStopWords(), 0, slog.Default())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = res.Resolve(context.Background(), "Elon Musk founded SpaceX and loves Soul Food")
	}
}

// BenchmarkResolveParallel measures concurrent resolution throughput over an
// immutable persisted index.
func BenchmarkResolveParallel(b *testing.B) {
	dir := b.TempDir()
	ix := nameindex.New()
	ix.Add("Soul_Food")
	ix.Add("SpaceX")
	if err := ix.Flush(dir); err != nil {
		b.Fatalf("Flush: %v", err)
	}
	res := resolver.New(nameindex.Store{Dir: dir}, resolver.DefaultStopWords(), 0, slog.Default())

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = res.Resolve(context.Background(), "I love Soul Food")
		}
	})
}
