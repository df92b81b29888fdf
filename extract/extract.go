// Package extract pulls links out of HTML documents and keys them by their
// canonical form.
package extract

import (
	"fmt"
	"io"
	"net/url"

	"golang.org/x/net/html"

	"github.com/lukemcguire/canonhost/canon"
	"github.com/lukemcguire/canonhost/urlutil"
)

// Link is an anchor target found in a document.
type Link struct {
	Href      string // resolved absolute URL
	Canonical string // canonical key of Href
	External  bool   // Href is on a different registrable domain than the base
}

// Links parses HTML from body and returns every distinct http(s) anchor
// target, resolved against baseURL and deduplicated by canonical key, in
// document order. baseURL may be nil when the document's links are absolute.
func Links(body io.Reader, baseURL *url.URL) ([]Link, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	tokenizer := html.NewTokenizer(body)
	seen := make(map[string]bool)
	var links []Link
	var errs []error

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && err != io.EOF {
				errs = append(errs, err)
			}
			if len(errs) > 0 {
				return links, fmt.Errorf("encountered %d parse errors (first: %w)", len(errs), errs[0])
			}
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" && token.Data != "area" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key != "href" {
					continue
				}

				resolved, err := urlutil.ResolveReference(baseURL.String(), attr.Val)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if !urlutil.IsHTTPScheme(resolved) {
					continue
				}

				key := canon.Canonicalize(resolved)
				if seen[key] {
					continue
				}
				seen[key] = true
				links = append(links, Link{
					Href:      resolved,
					Canonical: key,
					External:  baseURL.Host != "" && !urlutil.IsSameSite(resolved, baseURL.Hostname()),
				})
			}
		}
	}
}
