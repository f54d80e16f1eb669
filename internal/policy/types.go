package policy

import (
	"strings"

	"ioccollector/internal/common"
)

// Input is what a risk rule sees: the combined source string and resolved category of one
// aggregated indicator.
type Input struct {
	Source   string
	Category string
}

// Rule assigns Risk when its condition matches. Rules are evaluated by ascending Priority.
type Rule struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	Priority  int              `json:"priority" yaml:"priority"`
	Condition Condition        `json:"condition" yaml:"condition"`
	Risk      common.RiskLevel `json:"risk" yaml:"risk"`
}

// Condition matches when every non-empty clause matches.
type Condition struct {
	// SourceContains matches when the lowercased source contains any of the substrings.
	SourceContains []string `json:"source_contains,omitempty" yaml:"source_contains,omitempty"`
	// Categories matches when the category equals one of the labels.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

func (c Condition) matches(in Input) bool {
	if len(c.SourceContains) == 0 && len(c.Categories) == 0 {
		return false
	}
	if len(c.SourceContains) > 0 {
		source := strings.ToLower(in.Source)
		hit := false
		for _, s := range c.SourceContains {
			if strings.Contains(source, strings.ToLower(s)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if len(c.Categories) > 0 {
		category := strings.ToLower(in.Category)
		hit := false
		for _, cat := range c.Categories {
			if category == cat {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Decision is the outcome of evaluating an input.
type Decision struct {
	Risk        common.RiskLevel
	MatchedRule *Rule
}
