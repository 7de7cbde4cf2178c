// Stolen and changed from https://github.com/subosito/gozaru
package storage

import (
	"regexp"
	"strings"
)

const fallbackFilename = "file"

var (
	characterFilter   = regexp.MustCompile(`[\x00-\x1F\/\\:\*\?\"<>\|]`)
	unicodeWhitespace = regexp.MustCompile(`[[:space:]]+`)
)

// sanitize makes s safe as a file name, leaving n bytes of headroom below
// the 255 byte limit for suffixes the caller appends.
func sanitize(s string, n int, fallback string) string {
	if fallback == "" {
		fallback = fallbackFilename
	}

	sc := clean(s, fallback)
	limit := 255 - n
	if limit < 0 {
		limit = 0
	}
	if len(sc) > limit {
		sc = sc[:limit]
	}
	return sc
}

func clean(s string, fallback string) string {
	sc := replace(s, unicodeWhitespace, " ")
	sc = replace(sc, characterFilter, "_")
	sc = replace(sc, unicodeWhitespace, " ")

	sc = filterBlank(sc, fallback)
	return filterDot(sc, fallback)
}

func replace(s string, pattern *regexp.Regexp, replacement string) string {
	return strings.TrimSpace(pattern.ReplaceAllString(s, replacement))
}

func filterBlank(s string, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}

func filterDot(s string, fallback string) string {
	if strings.HasPrefix(s, ".") {
		return fallback + s
	}

	return s
}
