package resolver

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// defaultStopWords is the built-in English stop-word list, used when no
// stop-word file is configured. Claim words are lowercased before the
// comparison, so entries here are lowercase.
var defaultStopWords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "did", "do",
	"does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "i", "if", "in", "into",
	"is", "it", "its", "itself", "just", "me", "more", "most", "my",
	"myself", "no", "nor", "not", "now", "of", "off", "on", "once", "only",
	"or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these",
	"they", "this", "those", "through", "to", "too", "under", "until",
	"up", "very", "was", "we", "were", "what", "when", "where", "which",
	"while", "who", "whom", "why", "will", "with", "you", "your", "yours",
	"yourself", "yourselves",
}

// DefaultStopWords returns the built-in stop-word set.
func DefaultStopWords() map[string]struct{} {
	return StopWordSet(defaultStopWords)
}

// StopWordSet builds a lookup set from a word list, lowercasing entries.
func StopWordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// LoadStopWords reads a stop-word file with one word per line. Blank lines
// and lines starting with '#' are skipped. An empty path yields the default
// set.
func LoadStopWords(path string) (map[string]struct{}, error) {
	if path == "" {
		return DefaultStopWords(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stop-word file %s: %w", path, err)
	}
	defer f.Close()

	set := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stop-word file %s: %w", path, err)
	}
	return set, nil
}
