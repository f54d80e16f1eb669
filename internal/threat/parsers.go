package threat

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"

	"ioccollector/internal/common"
)

var (
	ipCIDRPattern = regexp.MustCompile(`^[0-9]{1,3}(?:\.[0-9]{1,3}){3}(?:/[0-9]{1,2})?$`)
	sha256Pattern = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
)

// ParseFunc converts raw feed text into candidate records.
type ParseFunc func(text, source string) []RawRecord

// ParserFor returns the parser registered for kind.
func ParserFor(kind FeedKind) (ParseFunc, bool) {
	switch FeedKind(strings.ToLower(string(kind))) {
	case KindDrop, KindFeodo:
		return ParseDropList, true
	case KindURLHaus:
		return ParseURLList, true
	case KindHashList:
		return ParseHashList, true
	}
	return nil, false
}

// ParseDropList parses "ip[/prefix] ; comment" lines.
func ParseDropList(text, source string) []RawRecord {
	var out []RawRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		token, _, _ := strings.Cut(line, ";")
		token = strings.TrimSpace(token)
		if !ipCIDRPattern.MatchString(token) {
			continue
		}
		out = append(out, RawRecord{
			Indicator: token,
			Type:      string(common.IndicatorIP),
			Source:    source,
			FirstSeen: NowISO(),
		})
	}
	return out
}

// ParseURLList parses URLhaus-style CSV (id,dateadded,url,url_status,threat,...) and
// reduces every URL to its host.
func ParseURLList(text, source string) []RawRecord {
	var out []RawRecord
	reader := newLenientReader(text)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		if len(row) == 0 || strings.HasPrefix(row[0], "#") || strings.EqualFold(row[0], "id") {
			continue
		}
		if len(row) < 5 {
			continue
		}
		dateAdded, rawURL, threatName := row[1], strings.TrimSpace(row[2]), row[4]
		if rawURL == "" {
			continue
		}
		host := hostFromURL(rawURL)
		if host == "" {
			continue
		}
		firstSeen := dateAdded
		if strings.TrimSpace(firstSeen) == "" {
			firstSeen = NowISO()
		}
		out = append(out, RawRecord{
			Indicator: host,
			Type:      string(common.IndicatorDomain),
			Source:    source,
			FirstSeen: firstSeen,
			Category:  strings.ToLower(strings.TrimSpace(threatName)),
		})
	}
	return out
}

// ParseHashList extracts SHA256 hashes, from a "sha256" column when the header has one and
// from any cell otherwise.
func ParseHashList(text, source string) []RawRecord {
	reader := newLenientReader(text)
	header, err := reader.Read()
	if err != nil {
		return nil
	}
	column := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "sha256") {
			column = i
			break
		}
	}

	var out []RawRecord
	emit := func(value string) {
		value = strings.TrimSpace(value)
		if !sha256Pattern.MatchString(value) {
			return
		}
		out = append(out, RawRecord{
			Indicator: strings.ToLower(value),
			Type:      string(common.IndicatorHash),
			Source:    source,
			FirstSeen: NowISO(),
		})
	}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		if column >= 0 {
			if column < len(row) {
				emit(row[column])
			}
			continue
		}
		for _, cell := range row {
			emit(cell)
		}
	}
	return out
}

func hostFromURL(rawURL string) string {
	u := strings.ToLower(rawURL)
	if _, rest, ok := strings.Cut(u, "://"); ok {
		u = rest
	}
	host, _, _ := strings.Cut(u, "/")
	return host
}

func newLenientReader(text string) *csv.Reader {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r
}
