// Package resolver maps a natural-language claim sentence to the document
// names it refers to. Each claim word feeds one name-index lookup; candidate
// names are validated as ordered token prefixes of the claim, capitalized
// words take precedence over lowercase ones, and names whose token runs are
// contained in a longer accepted match are absorbed by it.
package resolver

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/factive/claimsearch/internal/indexer/nameindex"
	"github.com/factive/claimsearch/internal/indexer/tokenizer"
	"github.com/factive/claimsearch/pkg/tracing"
)

// candidate is one document name fetched from the name index along with its
// lowercase token sequence.
type candidate struct {
	name   string
	tokens []string
}

// Resolver resolves claims against a persisted name index.
type Resolver struct {
	names    nameindex.Store
	stop     map[string]struct{}
	maxNames int
	log      *slog.Logger
}

// New creates a Resolver. maxNamesPerWord caps how many candidate names one
// claim word may pull from the index; 0 means unlimited.
func New(names nameindex.Store, stopWords map[string]struct{}, maxNamesPerWord int, log *slog.Logger) *Resolver {
	return &Resolver{
		names:    names,
		stop:     stopWords,
		maxNames: maxNamesPerWord,
		log:      log.With(slog.String("component", "resolver")),
	}
}

// Resolve returns the document names the claim refers to, sorted. An empty
// claim or an all-stop-word claim yields an empty slice. A failed word
// lookup contributes no candidates rather than failing the resolution.
func (r *Resolver) Resolve(ctx context.Context, claim string) []string {
	ctx, span := tracing.StartChildSpan(ctx, "resolver.index-walk")
	defer span.End()

	words := tokenizer.ClaimWords(claim)
	span.SetAttr("claim_words", len(words))
	accepted := make(map[string][]string)
	fetched := make(map[string][]candidate)
	entityMode := false

	for i, word := range words {
		lower := strings.ToLower(word)
		if _, skip := r.stop[lower]; skip {
			continue
		}
		entity := tokenizer.IsEntityWord(word)
		if entity && !entityMode {
			// First capitalized word: common-word matches collected so
			// far no longer count.
			entityMode = true
			clear(accepted)
		}
		if entityMode && !entity {
			continue
		}
		cands, ok := fetched[lower]
		if !ok {
			cands = r.fetch(ctx, lower)
			fetched[lower] = cands
		}
		for _, c := range cands {
			if hasTokenPrefix(words, i, c.tokens) {
				accepted[c.name] = c.tokens
			}
		}
	}
	return absorb(accepted)
}

// fetch pulls the candidate names indexed under word and tokenizes each.
// Names with no tokens left after disambiguation stripping cannot match any
// claim and are dropped.
func (r *Resolver) fetch(ctx context.Context, word string) []candidate {
	names, err := r.names.Names(word)
	if err != nil {
		r.log.WarnContext(ctx, "name lookup failed",
			slog.String("word", word),
			slog.Any("error", err),
		)
		return nil
	}
	if r.maxNames > 0 && len(names) > r.maxNames {
		names = names[:r.maxNames]
	}
	cands := make([]candidate, 0, len(names))
	for _, name := range names {
		tokens := tokenizer.NameTokens(name)
		if len(tokens) == 0 {
			continue
		}
		cands = append(cands, candidate{name: name, tokens: tokens})
	}
	return cands
}

// hasTokenPrefix reports whether the claim token sequence starting at i
// begins with exactly tokens, compared case-insensitively.
func hasTokenPrefix(words []string, i int, tokens []string) bool {
	if i+len(tokens) > len(words) {
		return false
	}
	for j, t := range tokens {
		if strings.ToLower(words[i+j]) != t {
			return false
		}
	}
	return true
}

// absorb drops every accepted name whose token sequence is a strict
// contiguous run inside another accepted name's sequence. Names sharing an
// identical tokenization all survive.
func absorb(accepted map[string][]string) []string {
	out := make([]string, 0, len(accepted))
	for name, tokens := range accepted {
		contained := false
		for other, otherTokens := range accepted {
			if other == name || len(otherTokens) <= len(tokens) {
				continue
			}
			if containsRun(otherTokens, tokens) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// containsRun reports whether needle occurs as a contiguous run inside
// haystack. Containment is on whole tokens, so "art" is not inside "start".
func containsRun(haystack []string, needle []string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, t := range needle {
			if haystack[i+j] != t {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
