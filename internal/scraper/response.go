// Package scraper turns fetched pages into outbound links and page
// text. Fetching itself happens elsewhere; this package consumes the
// already-downloaded response.
package scraper

// Response is the externally supplied fetch result for one page.
type Response struct {
	StatusCode  int    // HTTP status code
	Body        []byte // Raw body, possibly empty on failure
	ContentType string // Declared Content-Type header, may be empty
	FinalURL    string // Effective URL after redirects
}

// IsHTML reports whether the declared content type permits HTML
// parsing. An absent content type is treated as HTML, matching servers
// that omit the header.
func (r *Response) IsHTML() bool {
	if r.ContentType == "" {
		return true
	}
	return containsFold(r.ContentType, "text/html")
}
