// Package dictionary matches page text against a fixed set of target
// words.
package dictionary

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Dictionary is an immutable, case-insensitive word set. Matching splits
// text on whitespace only, so punctuation stays attached to its token and
// "dog." does not match "dog".
type Dictionary struct {
	words  map[string]struct{}
	minLen int
}

// New builds a Dictionary. Words are trimmed and lowercased, duplicates
// collapse. Tokens shorter than minLen runes are never matched; a token of
// exactly minLen still is.
func New(words []string, minLen int) *Dictionary {
	d := &Dictionary{
		words:  make(map[string]struct{}, len(words)),
		minLen: minLen,
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			d.words[w] = struct{}{}
		}
	}
	return d
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Match returns the sorted set of dictionary words present in text. Each
// word is reported once no matter how often it occurs; no matches returns
// nil.
func (d *Dictionary) Match(text string) []string {
	var found map[string]struct{}
	for _, tok := range strings.Fields(text) {
		if utf8.RuneCountInString(tok) < d.minLen {
			continue
		}
		tok = strings.ToLower(tok)
		if _, ok := d.words[tok]; !ok {
			continue
		}
		if found == nil {
			found = make(map[string]struct{})
		}
		found[tok] = struct{}{}
	}
	if len(found) == 0 {
		return nil
	}

	out := make([]string, 0, len(found))
	for w := range found {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
