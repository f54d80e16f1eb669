package threat

import (
	"context"

	"ioccollector/internal/common"
)

// FeedKind selects the parser used for a feed.
type FeedKind string

const (
	KindDrop     FeedKind = "drop"
	KindURLHaus  FeedKind = "urlhaus"
	KindHashList FeedKind = "hashlist"
	KindFeodo    FeedKind = "feodo"
)

// Feed describes one configured threat feed.
type Feed struct {
	Name    string   `yaml:"name" json:"name"`
	URL     string   `yaml:"url" json:"url"`
	Kind    FeedKind `yaml:"kind" json:"kind"`
	Enabled *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	// Sample is an optional local file used when the download fails.
	Sample string `yaml:"sample,omitempty" json:"sample,omitempty"`
}

// IsEnabled reports whether the feed takes part in a run. Feeds are enabled unless stated otherwise.
func (f Feed) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// RawRecord is a loosely typed candidate produced by a parser.
type RawRecord struct {
	Indicator string
	Type      string
	Source    string
	FirstSeen string
	Category  string
}

// Record is a normalized indicator.
type Record struct {
	Indicator string               `json:"indicator"`
	Type      common.IndicatorType `json:"type"`
	Source    string               `json:"source"`
	FirstSeen string               `json:"first_seen"`
	Category  string               `json:"category"`
}

// Key identifies a record for deduplication and aggregation.
type Key struct {
	Indicator string
	Type      common.IndicatorType
}

// Key returns the (indicator, type) identity of the record.
func (r Record) Key() Key {
	return Key{Indicator: r.Indicator, Type: r.Type}
}

// FeedFetcher retrieves the raw text of a feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feed Feed) string
}

// RecordStore persists the records produced by a collection run.
type RecordStore interface {
	SaveRecords(ctx context.Context, records []Record) error
}
