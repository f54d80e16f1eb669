package threat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"ioccollector/internal/metrics"
)

// ETLController runs fetch, parse, normalize and dedup for every configured feed.
type ETLController struct {
	feedsPath string
	fetcher   FeedFetcher
	store     RecordStore
}

// RunStats summarizes one collection run.
type RunStats struct {
	Feeds      int
	Parsed     int
	Normalized int
	Unique     int
}

// Duplicates is the number of records removed by deduplication.
func (s RunStats) Duplicates() int { return s.Normalized - s.Unique }

// NewETLController creates a new controller reading its feed list from feedsPath.
func NewETLController(feedsPath string, fetcher FeedFetcher, store RecordStore) *ETLController {
	return &ETLController{feedsPath: feedsPath, fetcher: fetcher, store: store}
}

// Run processes the enabled feeds one at a time in configuration order. An unreadable feed
// configuration is the only error that stops the run; feed failures are logged and skipped.
func (c *ETLController) Run(ctx context.Context) ([]Record, RunStats, error) {
	var stats RunStats
	feeds, err := LoadFeeds(c.feedsPath)
	if err != nil {
		return nil, stats, err
	}

	var raws []RawRecord
	for _, feed := range feeds {
		stats.Feeds++
		parse, ok := ParserFor(feed.Kind)
		if !ok {
			slog.Warn("no parser for feed kind", "feed", feed.Name, "kind", feed.Kind)
			continue
		}
		slog.Info("fetching feed", "feed", feed.Name, "url", feed.URL)
		text := c.fetcher.Fetch(ctx, feed)
		if text == "" {
			slog.Warn("no data for feed", "feed", feed.Name)
			continue
		}
		parsed := parse(text, feed.Name)
		metrics.RecordsParsed.WithLabelValues(feed.Name).Add(float64(len(parsed)))
		slog.Info("parsed feed", "feed", feed.Name, "records", len(parsed))
		raws = append(raws, parsed...)
	}
	stats.Parsed = len(raws)

	records, dropped := NormalizeAll(raws)
	metrics.RecordsDropped.WithLabelValues("normalize").Add(float64(dropped))
	stats.Normalized = len(records)

	records = Deduplicate(records)
	stats.Unique = len(records)
	metrics.RecordsDropped.WithLabelValues("dedup").Add(float64(stats.Duplicates()))

	slog.Info("collection finished",
		"feeds", stats.Feeds,
		"total", humanize.Comma(int64(stats.Normalized)),
		"unique", humanize.Comma(int64(stats.Unique)),
		"duplicates_removed", humanize.Comma(int64(stats.Duplicates())),
	)

	if c.store != nil {
		if err := c.store.SaveRecords(ctx, records); err != nil {
			return records, stats, fmt.Errorf("store records: %w", err)
		}
	}
	return records, stats, nil
}
