package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Fetch size ceilings. Enrichment is fire-and-forget; nothing here is worth
// streaming an unbounded body for.
const (
	maxPageBytes    = 512 << 10
	maxFaviconBytes = 256 << 10
	maxPreviewBytes = 2 << 20
)

type linkMetadata struct {
	title   string
	favicon []byte
	preview []byte
}

// fetchLinkMetadata pulls the page and extracts <title>, the rel=icon
// favicon and the og:image preview. Partial results are fine: a missing
// favicon or preview never fails the whole fetch.
func (p *Pipeline) fetchLinkMetadata(ctx context.Context, rawURL string) (linkMetadata, error) {
	var meta linkMetadata

	base, err := url.Parse(rawURL)
	if err != nil {
		return meta, err
	}

	body, err := p.get(ctx, rawURL, maxPageBytes)
	if err != nil {
		return meta, err
	}

	title, iconHref, previewHref := parsePage(body)
	meta.title = title

	if iconHref == "" {
		iconHref = "/favicon.ico"
	}
	if iconURL := resolveRef(base, iconHref); iconURL != "" {
		meta.favicon, _ = p.get(ctx, iconURL, maxFaviconBytes)
	}
	if previewURL := resolveRef(base, previewHref); previewURL != "" {
		meta.preview, _ = p.get(ctx, previewURL, maxPreviewBytes)
	}

	return meta, nil
}

func (p *Pipeline) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// parsePage walks the document for the title, the rel=icon href and the
// og:image content.
func parsePage(body []byte) (title, iconHref, previewHref string) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", "", ""
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "link":
				rel := strings.ToLower(attr(n, "rel"))
				if iconHref == "" && (rel == "icon" || rel == "shortcut icon" || rel == "apple-touch-icon") {
					iconHref = attr(n, "href")
				}
			case "meta":
				prop := strings.ToLower(attr(n, "property"))
				if previewHref == "" && prop == "og:image" {
					previewHref = attr(n, "content")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, iconHref, previewHref
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// resolveRef turns a possibly relative href into an absolute URL against the
// page it came from.
func resolveRef(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
