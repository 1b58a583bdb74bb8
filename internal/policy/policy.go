package policy

import (
	"log/slog"
	"net/url"

	"linksift/internal/config"
)

// Admitter runs the full admission pipeline over discovered URLs.
// Checks are ordered cheapest and most decisive first; the stateful
// trap tracker runs last so its counters only see URLs that survived
// the stateless checks.
type Admitter struct {
	domains    *DomainList
	rules      *RuleSet
	structural Structural
	traps      *TrapTracker
}

// NewAdmitter builds an Admitter from the configuration.
func NewAdmitter(cfg *config.Config) (*Admitter, error) {
	rules, err := NewRuleSet(cfg.DisallowedExtensions, cfg.TrapPatterns)
	if err != nil {
		return nil, err
	}

	return &Admitter{
		domains: NewDomainList(cfg.AllowedDomains),
		rules:   rules,
		structural: Structural{
			MaxPathDepth:   cfg.MaxPathDepth,
			MaxQueryParams: cfg.MaxQueryParams,
			MaxURLLength:   cfg.MaxURLLength,
		},
		traps: NewTrapTracker(cfg.PatternCeiling),
	}, nil
}

// Tracker exposes the dynamic trap tracker, for counter persistence.
func (a *Admitter) Tracker() *TrapTracker {
	return a.traps
}

// Admit decides whether a discovered URL is safe and useful to visit.
// Malformed URLs fail closed.
func (a *Admitter) Admit(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		slog.Debug("Rejected unparseable URL", "url", rawURL, "error", err)
		return false
	}

	if !a.domains.Allows(u) {
		return false
	}

	if rule, disallowed := a.rules.Disallows(u); disallowed {
		slog.Debug("Rejected by pattern rule", "url", rawURL, "rule", rule)
		return false
	}

	if reason, suspicious := a.structural.Suspicious(u); suspicious {
		slog.Debug("Rejected by structural check", "url", rawURL, "reason", reason)
		return false
	}

	if a.traps.Seen(u) {
		slog.Debug("Rejected by trap tracker", "url", rawURL, "pattern", PathPattern(u))
		return false
	}

	return true
}
