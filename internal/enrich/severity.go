package enrich

import (
	"sort"
	"strings"

	"ioccollector/internal/common"
)

// ResolveCategory picks the most severe label among values. Blank values are ignored. When
// no known label is present the lexicographically smallest value wins.
func ResolveCategory(values []string) string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	if len(set) == 0 {
		return ""
	}
	for _, label := range common.SeverityOrder() {
		if _, ok := set[label]; ok {
			return label
		}
	}
	observed := make([]string, 0, len(set))
	for v := range set {
		observed = append(observed, v)
	}
	sort.Strings(observed)
	return observed[0]
}
