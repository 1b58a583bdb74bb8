package policy

import (
	"net/url"
	"strings"
)

// Structural holds the stateless shape limits applied to every URL.
type Structural struct {
	MaxPathDepth   int // maximum non-empty path segments
	MaxQueryParams int // maximum query parameters
	MaxURLLength   int // maximum absolute URL string length
}

// repeatLimit is how many times a single path segment may appear before
// the URL is treated as an oscillation trap (/a/b/a/b/a/b).
const repeatLimit = 3

// Suspicious reports whether the URL trips any structural limit. The
// returned reason identifies the failed check for logging.
func (s Structural) Suspicious(u *url.URL) (reason string, suspicious bool) {
	if len(u.String()) > s.MaxURLLength {
		return "url_too_long", true
	}

	depth := 0
	counts := make(map[string]int)
	for _, segment := range strings.Split(u.Path, "/") {
		if segment == "" {
			continue
		}
		depth++
		counts[segment]++
		if counts[segment] >= repeatLimit {
			return "repeated_segment", true
		}
	}
	if depth > s.MaxPathDepth {
		return "path_too_deep", true
	}

	if u.RawQuery != "" {
		params := 0
		for _, param := range strings.Split(u.RawQuery, "&") {
			if param != "" {
				params++
			}
		}
		if params > s.MaxQueryParams {
			return "too_many_params", true
		}
	}

	return "", false
}
