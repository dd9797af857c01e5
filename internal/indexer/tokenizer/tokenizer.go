// Package tokenizer provides the three word-splitting rules the index and
// resolver share: name words (index keys), claim words (case-preserving
// query tokens), and name tokens (the word sequence a document name must
// match as a prefix of a claim).
package tokenizer

import (
	"regexp"
	"strings"
	"unicode"
)

// parenSuffix matches the parenthesised disambiguation span of a document
// name, e.g. "(film)" in "Soul_Food_(film)".
var parenSuffix = regexp.MustCompile(`\(.*\)`)

// NameWords returns the distinct lowercase words of a document name, split
// on every non-alphanumeric rune (underscores separate). Each word becomes
// one name-index key for the document.
func NameWords(name string) []string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.ToLower(f)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

// ClaimWords splits a claim sentence into tokens with original casing
// preserved. Underscores bind into tokens; every other non-alphanumeric
// rune separates.
func ClaimWords(sentence string) []string {
	return strings.FieldsFunc(sentence, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// NameTokens returns the lowercase token sequence of a document name as it
// must appear in a claim: the parenthesised disambiguation suffix is
// stripped, the rest splits on underscores. Empty tokens are dropped, so a
// name that is all disambiguation yields nil.
func NameTokens(name string) []string {
	short := strings.Trim(parenSuffix.ReplaceAllString(name, ""), "_")
	parts := strings.Split(short, "_")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(p))
	}
	return tokens
}

// IsEntityWord reports whether a claim token is treated as a named-entity
// mention: any token whose first rune is not a lowercase letter.
func IsEntityWord(word string) bool {
	for _, r := range word {
		return !unicode.IsLower(r)
	}
	return false
}
