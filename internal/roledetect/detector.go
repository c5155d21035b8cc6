// Package roledetect guesses an intended role from an identifier string such
// as a corporate email. The guess is a UX hint for pre-filling role
// suggestions; access verification never consults it.
package roledetect

import (
	"sort"
	"strings"
)

const (
	// FallbackRole is suggested when nothing matches.
	FallbackRole       = "employee"
	fallbackConfidence = 50

	// Confidence adjustments applied to a matched rule's priority.
	domainMatchBoost = 20
	genericPenalty   = 10
	keywordBoost     = 5
)

// Flags emitted by the detection side analysis.
const (
	FlagUnknownPattern      = "unknown_pattern"
	FlagNumericSequence     = "numeric_sequence"
	FlagTestAccountPattern  = "test_account_pattern"
	FlagShortUsername       = "short_username"
	FlagPersonalEmailDomain = "personal_email_domain"
)

// Detection is the best-effort suggestion for one identifier.
type Detection struct {
	Role             string   `json:"role"`
	Confidence       int      `json:"confidence"`
	RequiresApproval bool     `json:"requires_approval"`
	Alternatives     []string `json:"alternatives,omitempty"`
	Flags            []string `json:"flags,omitempty"`
}

// Detector resolves identifiers against a domain map and an ordered rule set.
// It is stateless after construction and safe for concurrent use.
type Detector struct {
	domainRoles map[string]DomainRole
	rules       []Rule
}

// Option configures a Detector.
type Option func(*Detector)

// WithDomainRoles replaces the exact-domain map.
func WithDomainRoles(domainRoles map[string]DomainRole) Option {
	return func(d *Detector) {
		d.domainRoles = domainRoles
	}
}

// WithRules replaces the pattern rule set. Order is preserved and used as the
// tie break.
func WithRules(rules []Rule) Option {
	return func(d *Detector) {
		d.rules = rules
	}
}

// NewDetector builds a detector with the default tables unless overridden.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		domainRoles: DefaultDomainRoles(),
		rules:       DefaultRules(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect suggests a role for the identifier. It never fails: unresolvable
// inputs produce the low-confidence fallback instead of an error.
func (d *Detector) Detect(identifier string) Detection {
	normalized := strings.ToLower(strings.TrimSpace(identifier))
	local, domain := splitIdentifier(normalized)

	flags := analyzeSecurity(local, domain)

	if domain != "" {
		if dr, ok := d.domainRoles[domain]; ok {
			return Detection{
				Role:       dr.Role,
				Confidence: clampConfidence(dr.Confidence),
				Flags:      flags,
			}
		}
	}

	best, alternatives := d.matchRules(normalized)
	if best == nil {
		return Detection{
			Role:             FallbackRole,
			Confidence:       fallbackConfidence,
			RequiresApproval: true,
			Flags:            append([]string{FlagUnknownPattern}, flags...),
		}
	}

	return Detection{
		Role:             best.Role,
		Confidence:       d.confidence(*best, normalized, domain),
		RequiresApproval: best.RequiresApproval,
		Alternatives:     alternatives,
		Flags:            flags,
	}
}

// matchRules folds over the ordered rule list keeping the best match.
// Priority wins; declaration order breaks ties. Other matching roles come
// back as alternatives, strongest first.
func (d *Detector) matchRules(normalized string) (*Rule, []string) {
	var (
		best    *Rule
		matched []Rule
	)
	for i := range d.rules {
		rule := d.rules[i]
		if !rule.Pattern.MatchString(normalized) {
			continue
		}
		matched = append(matched, rule)
		if best == nil || rule.Priority > best.Priority {
			best = &d.rules[i]
		}
	}
	if best == nil {
		return nil, nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})
	var alternatives []string
	for _, rule := range matched {
		if rule.Role != best.Role {
			alternatives = append(alternatives, rule.Role)
		}
	}
	return best, alternatives
}

// confidence adjusts the winning rule's priority: +20 when the role also
// appears in the mail domain, -10 for catch-all patterns, +5 per recognized
// role keyword in the identifier, clamped to [0,100].
func (d *Detector) confidence(rule Rule, normalized, domain string) int {
	confidence := rule.Priority

	if domain != "" && roleInDomain(rule.Role, domain) {
		confidence += domainMatchBoost
	}
	if rule.Generic {
		confidence -= genericPenalty
	}
	for _, keyword := range roleKeywords {
		if strings.Contains(normalized, keyword) {
			confidence += keywordBoost
		}
	}

	return clampConfidence(confidence)
}

// roleInDomain reports whether the role's leading token appears in the
// domain, e.g. role "hr_manager" against domain "hr.company.com".
func roleInDomain(role, domain string) bool {
	token, _, _ := strings.Cut(role, "_")
	return token != "" && strings.Contains(domain, token)
}

func splitIdentifier(identifier string) (local, domain string) {
	local, domain, found := strings.Cut(identifier, "@")
	if !found {
		return identifier, ""
	}
	return local, domain
}

func clampConfidence(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
