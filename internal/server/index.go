package server

import (
	"strings"

	"github.com/willf/bloom"

	"ioccollector/internal/common"
	"ioccollector/internal/geo"
)

// Index is a read-only view of the geo-enriched dataset. The bloom filter rejects most unknown
// indicators before the map is consulted.
type Index struct {
	records []geo.Record
	byKey   map[string][]int
	filter  *bloom.BloomFilter
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Type     common.IndicatorType
	Risk     common.RiskLevel
	Category string
	Limit    int
}

func indexKey(indicator string) string {
	return strings.ToLower(strings.TrimSpace(indicator))
}

// NewIndex builds an index over records.
func NewIndex(records []geo.Record) *Index {
	n := uint(len(records))
	if n < 1000 {
		n = 1000
	}
	idx := &Index{
		records: records,
		byKey:   make(map[string][]int, len(records)),
		filter:  bloom.NewWithEstimates(n, 0.01),
	}
	for i, r := range records {
		k := indexKey(r.Indicator)
		idx.byKey[k] = append(idx.byKey[k], i)
		idx.filter.AddString(k)
	}
	return idx
}

// Len returns the number of indexed records.
func (idx *Index) Len() int { return len(idx.records) }

// Lookup returns every record for indicator, one per type.
func (idx *Index) Lookup(indicator string) []geo.Record {
	k := indexKey(indicator)
	if !idx.filter.TestString(k) {
		return nil
	}
	positions := idx.byKey[k]
	out := make([]geo.Record, 0, len(positions))
	for _, i := range positions {
		out = append(out, idx.records[i])
	}
	return out
}

// List returns records matching f in dataset order.
func (idx *Index) List(f Filter) []geo.Record {
	out := make([]geo.Record, 0)
	category := strings.ToLower(strings.TrimSpace(f.Category))
	for _, r := range idx.records {
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Risk != "" && r.RiskScore != f.Risk {
			continue
		}
		if category != "" && strings.ToLower(r.Category) != category {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// Summary is the aggregate view served by /v1/summary.
type Summary struct {
	Total        int                `json:"total"`
	ByType       map[string]int     `json:"by_type"`
	ByRisk       map[string]int     `json:"by_risk"`
	ByCategory   map[string]int     `json:"by_category"`
	TopCountries []geo.CountryCount `json:"top_countries"`
}

// Summary counts records by type, risk and category.
func (idx *Index) Summary() Summary {
	s := Summary{
		Total:      len(idx.records),
		ByType:     make(map[string]int),
		ByRisk:     make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, r := range idx.records {
		s.ByType[string(r.Type)]++
		s.ByRisk[string(r.RiskScore)]++
		if r.Category != "" {
			s.ByCategory[r.Category]++
		}
	}
	s.TopCountries = geo.TopCountries(idx.records, 10)
	return s
}
