// Package enrich merges normalized records per indicator and assigns a risk score.
package enrich

import (
	"sort"
	"strings"
	"time"

	"ioccollector/internal/common"
	"ioccollector/internal/metrics"
	"ioccollector/internal/policy"
	"ioccollector/internal/threat"
)

// Record is one aggregated indicator.
type Record struct {
	Indicator string               `json:"indicator"`
	Type      common.IndicatorType `json:"type"`
	Source    string               `json:"source"`
	FirstSeen string               `json:"first_seen"`
	LastSeen  string               `json:"last_seen"`
	Category  string               `json:"category"`
	RiskScore common.RiskLevel     `json:"risk_score"`
}

type group struct {
	sources    map[string]struct{}
	categories []string
	first      time.Time
	last       time.Time
	hasTime    bool
}

func (g *group) add(r threat.Record) {
	if s := strings.TrimSpace(r.Source); s != "" {
		g.sources[s] = struct{}{}
	}
	g.categories = append(g.categories, r.Category)
	ts, ok := threat.ParseTimestamp(r.FirstSeen)
	if !ok {
		return
	}
	if !g.hasTime || ts.Before(g.first) {
		g.first = ts
	}
	if !g.hasTime || ts.After(g.last) {
		g.last = ts
	}
	g.hasTime = true
}

// Aggregator merges records sharing an (indicator, type) key. Input may contain any number of
// rows per key.
type Aggregator struct {
	engine *policy.Engine
	now    func() time.Time
}

// NewAggregator creates an aggregator scoring with engine (the default rules when nil).
func NewAggregator(engine *policy.Engine) *Aggregator {
	if engine == nil {
		engine = policy.NewEngine()
	}
	return &Aggregator{engine: engine, now: func() time.Time { return time.Now().UTC() }}
}

// Aggregate returns exactly one record per (indicator, type), sorted by indicator then type.
func (a *Aggregator) Aggregate(records []threat.Record) []Record {
	groups := make(map[threat.Key]*group)
	for _, r := range records {
		k := r.Key()
		g, ok := groups[k]
		if !ok {
			g = &group{sources: make(map[string]struct{})}
			groups[k] = g
		}
		g.add(r)
	}

	keys := make([]threat.Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Indicator != keys[j].Indicator {
			return keys[i].Indicator < keys[j].Indicator
		}
		return keys[i].Type < keys[j].Type
	})

	now := a.now().Format(time.RFC3339)
	out := make([]Record, 0, len(keys))
	counts := make(map[common.RiskLevel]int, 3)
	for _, k := range keys {
		g := groups[k]
		sources := make([]string, 0, len(g.sources))
		for s := range g.sources {
			sources = append(sources, s)
		}
		sort.Strings(sources)

		rec := Record{
			Indicator: k.Indicator,
			Type:      k.Type,
			Source:    strings.Join(sources, "|"),
			FirstSeen: now,
			LastSeen:  now,
			Category:  ResolveCategory(g.categories),
		}
		if g.hasTime {
			rec.FirstSeen = g.first.Format(time.RFC3339)
			rec.LastSeen = g.last.Format(time.RFC3339)
		}
		rec.RiskScore = a.engine.Evaluate(policy.Input{Source: rec.Source, Category: rec.Category}).Risk
		counts[rec.RiskScore]++
		out = append(out, rec)
	}
	for _, level := range []common.RiskLevel{common.RiskHigh, common.RiskMedium, common.RiskLow} {
		metrics.IndicatorsByRisk.WithLabelValues(string(level)).Set(float64(counts[level]))
	}
	return out
}

// CountByRisk returns the number of records per risk score.
func CountByRisk(records []Record) map[common.RiskLevel]int {
	counts := make(map[common.RiskLevel]int)
	for _, r := range records {
		counts[r.RiskScore]++
	}
	return counts
}
