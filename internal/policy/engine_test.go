package policy

import (
	"testing"

	"ioccollector/internal/common"
)

func TestDefaultRiskScoring(t *testing.T) {
	engine := NewEngine()
	tests := []struct {
		source   string
		category string
		want     common.RiskLevel
	}{
		{"Spamhaus DROP", "", common.RiskHigh},
		{"feedX", "phishing", common.RiskMedium},
		{"feedX", "", common.RiskLow},
		{"feedX", "malware", common.RiskHigh},
		{"feedX", "malware_download", common.RiskHigh},
		{"feedX", "c2", common.RiskHigh},
		{"feedX", "command-and-control", common.RiskHigh},
		{"feedX", "botnet", common.RiskLow},
		{"URLhaus|spamhaus edrop", "phishing", common.RiskHigh},
		{"feedX|SPAMHAUS", "spam", common.RiskHigh},
	}
	for _, tt := range tests {
		got := engine.Evaluate(Input{Source: tt.source, Category: tt.category})
		if got.Risk != tt.want {
			t.Fatalf("source=%q category=%q: expected %s, got %s", tt.source, tt.category, tt.want, got.Risk)
		}
	}
}

func TestEngineReportsMatchedRule(t *testing.T) {
	engine := NewEngine()
	d := engine.Evaluate(Input{Source: "Spamhaus DROP", Category: "phishing"})
	if d.MatchedRule == nil || d.MatchedRule.ID != "trusted-source" {
		t.Fatalf("expected trusted-source rule, got %+v", d.MatchedRule)
	}
	if d := engine.Evaluate(Input{Source: "x"}); d.MatchedRule != nil {
		t.Fatalf("expected no matched rule for default LOW, got %+v", d.MatchedRule)
	}
}

func TestEngineOrdersByPriority(t *testing.T) {
	engine := NewEngine(
		Rule{ID: "late", Priority: 50, Condition: Condition{Categories: []string{"spam"}}, Risk: common.RiskHigh},
		Rule{ID: "early", Priority: 1, Condition: Condition{Categories: []string{"spam"}}, Risk: common.RiskMedium},
		Rule{ID: "empty", Priority: 0, Risk: common.RiskHigh},
	)
	d := engine.Evaluate(Input{Category: "spam"})
	if d.Risk != common.RiskMedium || d.MatchedRule.ID != "early" {
		t.Fatalf("expected early rule, got %+v", d)
	}
}
