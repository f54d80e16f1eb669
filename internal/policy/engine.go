package policy

import (
	"sort"

	"ioccollector/internal/common"
	"ioccollector/internal/metrics"
)

// DefaultRules returns the built-in risk rules: a trusted blocklist source or a malware
// category is HIGH, phishing is MEDIUM.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:        "trusted-source",
			Name:      "Spamhaus listed",
			Priority:  10,
			Condition: Condition{SourceContains: []string{"spamhaus"}},
			Risk:      common.RiskHigh,
		},
		{
			ID:       "malware-category",
			Name:     "Malware related category",
			Priority: 20,
			Condition: Condition{Categories: []string{
				common.CategoryMalwareDownload,
				common.CategoryMalware,
				common.CategoryC2,
				common.CategoryCommandControl,
			}},
			Risk: common.RiskHigh,
		},
		{
			ID:        "phishing-category",
			Name:      "Phishing",
			Priority:  30,
			Condition: Condition{Categories: []string{common.CategoryPhishing}},
			Risk:      common.RiskMedium,
		},
	}
}

// Engine evaluates ordered risk rules. The first matching rule wins; no match is LOW.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over rules, ordered by priority. With no rules the default
// rule set is used.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	sorted := append([]Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })
	return &Engine{rules: sorted}
}

// Evaluate returns the risk decision for in.
func (e *Engine) Evaluate(in Input) Decision {
	for i := range e.rules {
		rule := &e.rules[i]
		if rule.Condition.matches(in) {
			metrics.RulesMatched.WithLabelValues(rule.ID).Inc()
			return Decision{Risk: rule.Risk, MatchedRule: rule}
		}
	}
	return Decision{Risk: common.RiskLow}
}
