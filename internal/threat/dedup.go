package threat

// Deduplicate keeps the first record seen for every (indicator, type) pair, preserving order.
// Later duplicates are dropped with their source and category.
func Deduplicate(records []Record) []Record {
	seen := make(map[Key]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
