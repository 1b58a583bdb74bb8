package scraper

import (
	"linksift/internal/config"
)

// Admitter decides whether a discovered URL should be enqueued.
type Admitter interface {
	Admit(rawURL string) bool
}

// Observer accumulates statistics from page text.
type Observer interface {
	Observe(pageURL, text string)
}

// Scraper is the full per-page pipeline: extract links, feed the stats
// observer, and filter the links through the admission policy.
type Scraper struct {
	extractor *Extractor
	admitter  Admitter
	observer  Observer
}

// New creates a scraper. observer may be nil when stats collection is
// disabled.
func New(cfg *config.Config, admitter Admitter, observer Observer) *Scraper {
	return &Scraper{
		extractor: NewExtractor(cfg.MaxBodySize),
		admitter:  admitter,
		observer:  observer,
	}
}

// Scrape processes one fetched page and returns the admitted outbound
// links in discovery order. The frontier dedups across calls.
func (s *Scraper) Scrape(pageURL string, resp *Response) []string {
	links, text := s.extractor.ExtractPage(pageURL, resp)

	if s.observer != nil && text != "" {
		s.observer.Observe(pageURL, text)
	}

	var admitted []string
	for _, link := range links {
		if s.admitter.Admit(link) {
			admitted = append(admitted, link)
		}
	}
	return admitted
}
