// Package fetchers provides the page fetch engines: a shared headless
// Chrome renderer and a plain HTTP client, both producing the same Page
// shape.
package fetchers

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/will-x86/wordhound"
)

// ParsePage extracts the visible text and every link from an HTML
// document. Script, style and noscript content is dropped from the text;
// hrefs are resolved against base so relative links come out absolute.
// Hrefs that do not parse keep their raw form.
func ParsePage(base *url.URL, r io.Reader) (*wordhound.Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	page := &wordhound.Page{Text: doc.Find("body").Text()}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		if ref, err := url.Parse(href); err == nil && base != nil {
			href = base.ResolveReference(ref).String()
		}
		page.Links = append(page.Links, href)
	})

	return page, nil
}
