package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ioccollector/internal/common"
)

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML (or JSON) rule set. Labels are lowercased and every rule must have an
// id, a non-empty condition and a known risk level.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse rules %s: no rules defined", path)
	}
	for i := range f.Rules {
		r := &f.Rules[i]
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: missing id", i)
		}
		r.Risk = common.RiskLevel(strings.ToUpper(string(r.Risk)))
		switch r.Risk {
		case common.RiskHigh, common.RiskMedium, common.RiskLow:
		default:
			return nil, fmt.Errorf("rule %s: unknown risk %q", r.ID, r.Risk)
		}
		if len(r.Condition.SourceContains) == 0 && len(r.Condition.Categories) == 0 {
			return nil, fmt.Errorf("rule %s: empty condition", r.ID)
		}
		for j, c := range r.Condition.Categories {
			r.Condition.Categories[j] = strings.ToLower(strings.TrimSpace(c))
		}
	}
	return f.Rules, nil
}

// LoadEngine returns an engine over the rules at path, or the default rules when path is empty.
func LoadEngine(path string) (*Engine, error) {
	if path == "" {
		return NewEngine(), nil
	}
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return NewEngine(rules...), nil
}
