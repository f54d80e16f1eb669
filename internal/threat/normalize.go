package threat

import (
	"strings"

	"ioccollector/internal/common"
)

// Normalize enforces the canonical schema on a candidate record. The second return value is
// false when the record has no indicator or an unsupported type.
func Normalize(raw RawRecord) (Record, bool) {
	indicator := strings.ToLower(strings.TrimSpace(raw.Indicator))
	if indicator == "" {
		return Record{}, false
	}
	typ, ok := common.ParseIndicatorType(strings.ToLower(strings.TrimSpace(raw.Type)))
	if !ok {
		return Record{}, false
	}
	firstSeen := strings.TrimSpace(raw.FirstSeen)
	if _, ok := ParseTimestamp(firstSeen); !ok {
		firstSeen = NowISO()
	}
	return Record{
		Indicator: indicator,
		Type:      typ,
		Source:    strings.TrimSpace(raw.Source),
		FirstSeen: firstSeen,
		Category:  strings.ToLower(strings.TrimSpace(raw.Category)),
	}, true
}

// NormalizeAll normalizes raws in order and returns the accepted records and the number dropped.
func NormalizeAll(raws []RawRecord) ([]Record, int) {
	out := make([]Record, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		rec, ok := Normalize(raw)
		if !ok {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	return out, dropped
}
