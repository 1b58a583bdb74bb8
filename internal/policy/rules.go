package policy

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Rule is a single compiled rejection rule. Rules either match the
// URL's path (extension checks) or the whole lowercased URL string
// (trap substrings).
type Rule struct {
	Name     string
	re       *regexp.Regexp
	pathOnly bool
}

// RuleSet is an ordered list of rejection rules evaluated with
// first-match-rejects semantics.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet compiles the disallowed-extension list and the trap
// patterns into an ordered rule set. The extension rule runs first
// since it eliminates most junk in a single match.
func NewRuleSet(extensions, trapPatterns []string) (*RuleSet, error) {
	var rules []Rule

	if len(extensions) > 0 {
		quoted := make([]string, len(extensions))
		for i, ext := range extensions {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(ext))
		}
		re, err := regexp.Compile(`\.(` + strings.Join(quoted, "|") + `)$`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile extension rule: %w", err)
		}
		rules = append(rules, Rule{Name: "disallowed_extension", re: re, pathOnly: true})
	}

	for _, pattern := range trapPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile trap pattern %q: %w", pattern, err)
		}
		rules = append(rules, Rule{Name: pattern, re: re})
	}

	return &RuleSet{rules: rules}, nil
}

// Disallows evaluates the rules in order against the URL. It returns
// the name of the first matching rule, or ok=false when no rule
// matches. All matching is done on lowercased input.
func (rs *RuleSet) Disallows(u *url.URL) (rule string, ok bool) {
	lowered := strings.ToLower(u.String())
	path := strings.ToLower(u.Path)

	for _, r := range rs.rules {
		target := lowered
		if r.pathOnly {
			target = path
		}
		if r.re.MatchString(target) {
			return r.Name, true
		}
	}
	return "", false
}
