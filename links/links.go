// Package links classifies raw hrefs and normalizes crawlable URLs so the
// same page is never admitted twice under a different spelling.
package links

import (
	"net/url"
	"sort"
	"strings"
)

// Link is the classification of one raw href.
type Link struct {
	// Raw is the href exactly as observed on the page.
	Raw string
	// URL is the normalized form, set only when Crawlable.
	URL string
	// Host is the lowercased hostname without port, set only when
	// Crawlable.
	Host string
	// Crawlable reports whether the href is an absolute http or https URL.
	Crawlable bool
}

// Classify parses raw and decides whether the crawler could fetch it.
// Relative links, mailto, javascript, tel and anything unparseable stay
// non-crawlable but keep their raw form for reporting.
func Classify(raw string) Link {
	l := Link{Raw: raw}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() {
		return l
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return l
	}
	if u.Host == "" {
		return l
	}

	l.URL = Normalize(u)
	l.Host = strings.ToLower(u.Hostname())
	l.Crawlable = true
	return l
}

// Normalize renders u in canonical form: lowercased scheme and host, no
// fragment, query parameters re-encoded in sorted key order. Path case is
// preserved. The normalized string is the dedup key everywhere.
func Normalize(u *url.URL) string {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.Fragment = ""

	if c.RawQuery != "" {
		query := c.Query()
		c.RawQuery = ""

		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var parts []string
		for _, k := range keys {
			vals := query[k]
			sort.Strings(vals)
			for _, v := range vals {
				parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		c.RawQuery = strings.Join(parts, "&")
	}

	return c.String()
}
