package scraper

import (
	"log/slog"
	"net/url"
	"strings"
)

// Extractor turns a fetched page into a sequence of absolute outbound
// URLs. Duplicate links within one page are preserved; dedup is the
// frontier's responsibility.
type Extractor struct {
	maxBodySize int64
	strategies  []parseStrategy
}

// NewExtractor creates an extractor with the given body size ceiling.
func NewExtractor(maxBodySize int64) *Extractor {
	return &Extractor{
		maxBodySize: maxBodySize,
		strategies:  []parseStrategy{goqueryStrategy{}, tokenizerStrategy{}},
	}
}

// Extract returns the outbound links of a fetched page. It returns nil
// when the response is not a parseable HTML page: non-200 status, empty
// body, non-HTML content type, or a body over the size ceiling.
func (e *Extractor) Extract(pageURL string, resp *Response) []string {
	links, _ := e.ExtractPage(pageURL, resp)
	return links
}

// ExtractPage returns the outbound links plus the page's visible text,
// which feeds the stats collector. Parse failures degrade through the
// strategy chain and finally to empty output, never to an error.
func (e *Extractor) ExtractPage(pageURL string, resp *Response) (links []string, text string) {
	if resp == nil || resp.StatusCode != 200 || len(resp.Body) == 0 {
		return nil, ""
	}
	if !resp.IsHTML() {
		return nil, ""
	}
	if int64(len(resp.Body)) > e.maxBodySize {
		slog.Debug("Skipping oversized body", "url", pageURL, "size", len(resp.Body))
		return nil, ""
	}

	// Resolve relative hrefs against the effective fetched URL when the
	// fetcher followed redirects.
	baseRaw := resp.FinalURL
	if baseRaw == "" {
		baseRaw = pageURL
	}
	base, err := url.Parse(baseRaw)
	if err != nil {
		slog.Debug("Unparseable page URL", "url", baseRaw, "error", err)
		return nil, ""
	}

	content := e.parse(pageURL, resp.Body)
	if content == nil {
		return nil, ""
	}

	for _, href := range content.anchors {
		if link, ok := resolveLink(base, href); ok {
			links = append(links, link)
		}
	}
	return links, content.text
}

// parse runs the strategy chain over the body.
func (e *Extractor) parse(pageURL string, body []byte) *pageContent {
	for _, strategy := range e.strategies {
		content, err := strategy.parse(body)
		if err == nil {
			return content
		}
		slog.Debug("Parse strategy failed", "url", pageURL, "strategy", strategy.name(), "error", err)
	}
	return nil
}

// resolveLink turns one anchor href into a canonical absolute URL:
// resolved against the page, fragment stripped, one trailing slash
// stripped. Pseudo-scheme and pure-fragment references are dropped.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lowered := strings.ToLower(href)
	if strings.HasPrefix(lowered, "javascript:") ||
		strings.HasPrefix(lowered, "mailto:") ||
		strings.HasPrefix(lowered, "tel:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	return CanonicalURL(resolved.String()), true
}

// CanonicalURL strips the fragment and one trailing slash from an
// absolute URL string.
func CanonicalURL(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	return strings.TrimSuffix(rawURL, "/")
}
