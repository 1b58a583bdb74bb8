// Package policy implements the URL admission pipeline: domain
// allow-listing, static pattern rules, structural heuristics, and
// dynamic trap tracking. Checks run cheapest-first and short-circuit on
// the first rejection.
package policy

import (
	"net/url"
	"strings"
)

// DomainList is the set of root domains permitted for crawling. A host
// is admitted when it equals an entry or is a dot-separated sub-host of
// one. Comparison is case-insensitive.
type DomainList struct {
	roots []string
}

// NewDomainList builds a DomainList from root domain names.
func NewDomainList(roots []string) *DomainList {
	normalized := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.ToLower(strings.TrimSpace(root))
		if root != "" {
			normalized = append(normalized, root)
		}
	}
	return &DomainList{roots: normalized}
}

// Allows reports whether the URL's scheme and host are admissible.
// Only http and https schemes qualify.
func (d *DomainList) Allows(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, root := range d.roots {
		if host == root || strings.HasSuffix(host, "."+root) {
			return true
		}
	}
	return false
}
