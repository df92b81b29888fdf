package extract

import (
	"net/url"
	"strings"
	"testing"
)

func TestLinks(t *testing.T) {
	base, _ := url.Parse("https://www.example.com/docs/")

	tests := []struct {
		name      string
		html      string
		wantKeys  []string
		wantHrefs []string
	}{
		{
			name:      "absolute and relative links",
			html:      `<a href="https://Other.COM/x">a</a><a href="/about">b</a>`,
			wantKeys:  []string{"other.com/", "www.example.com/"},
			wantHrefs: []string{"https://Other.COM/x", "https://www.example.com/about"},
		},
		{
			name:      "dedup by canonical key",
			html:      `<a href="http://evil.net/">1</a><a href="HTTP://..Evil..NET../login#x">2</a>`,
			wantKeys:  []string{"evil.net/"},
			wantHrefs: []string{"http://evil.net/"},
		},
		{
			name:     "non-http schemes skipped",
			html:     `<a href="mailto:x@example.com">m</a><a href="javascript:void(0)">j</a>`,
			wantKeys: nil,
		},
		{
			name:      "image map areas",
			html:      `<map><area href="https://map.example.org/"/></map>`,
			wantKeys:  []string{"map.example.org/"},
			wantHrefs: []string{"https://map.example.org/"},
		},
		{
			name:     "anchors without href",
			html:     `<a name="top">top</a><p>text</p>`,
			wantKeys: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := Links(strings.NewReader(tt.html), base)
			if err != nil {
				t.Fatalf("Links() error: %v", err)
			}
			if len(links) != len(tt.wantKeys) {
				t.Fatalf("Links() returned %d links, want %d: %+v", len(links), len(tt.wantKeys), links)
			}
			for i, link := range links {
				if link.Canonical != tt.wantKeys[i] {
					t.Errorf("link %d canonical = %q, want %q", i, link.Canonical, tt.wantKeys[i])
				}
				if tt.wantHrefs != nil && link.Href != tt.wantHrefs[i] {
					t.Errorf("link %d href = %q, want %q", i, link.Href, tt.wantHrefs[i])
				}
			}
		})
	}
}

func TestLinksExternal(t *testing.T) {
	base, _ := url.Parse("https://www.example.com/")
	doc := `<a href="https://login.example.com/">in</a><a href="https://example.com.phish.io/">out</a>`

	links, err := Links(strings.NewReader(doc), base)
	if err != nil {
		t.Fatalf("Links() error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].External {
		t.Errorf("expected %s to be same-site", links[0].Href)
	}
	if !links[1].External {
		t.Errorf("expected %s to be external", links[1].Href)
	}
}

func TestLinksNilBase(t *testing.T) {
	links, err := Links(strings.NewReader(`<a href="http://A.example/">a</a><a href="/rel">r</a>`), nil)
	if err != nil {
		t.Fatalf("Links() error: %v", err)
	}
	if len(links) != 1 || links[0].Canonical != "a.example/" {
		t.Fatalf("unexpected links: %+v", links)
	}
	if links[0].External {
		t.Error("links without a base host are never external")
	}
}
