package geo

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ioccollector/internal/common"
	"ioccollector/internal/enrich"
	"ioccollector/internal/metrics"
)

// Stats summarizes one enrichment run.
type Stats struct {
	Addresses int // distinct lookup addresses among ip records
	CacheHits int
	Requested int
	Batches   int
	Failed    int // addresses answered with a failure placeholder because a batch errored
}

// Enricher adds geolocation columns to ip records, consulting the cache before the resolver.
type Enricher struct {
	cache     *Cache
	resolver  Resolver
	batchSize int
	interval  time.Duration
	sleep     func(context.Context, time.Duration) error
}

// NewEnricher creates an enricher. interval is the pause between consecutive batches; a
// non-positive batchSize or one above MaxBatch is clamped to MaxBatch.
func NewEnricher(cache *Cache, resolver Resolver, batchSize int, interval time.Duration) *Enricher {
	if batchSize <= 0 || batchSize > MaxBatch {
		batchSize = MaxBatch
	}
	if interval < 0 {
		interval = 0
	}
	return &Enricher{
		cache:     cache,
		resolver:  resolver,
		batchSize: batchSize,
		interval:  interval,
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Enrich returns one record per input record, in input order. Addresses missing from the cache
// are resolved in batches; the cache is saved after every batch. A batch that errors caches a
// failure placeholder for each of its addresses, so they are not retried on later runs. When ctx
// ends, the run stops before the next batch, the interrupted batch is not cached, and ctx's error
// is returned.
func (e *Enricher) Enrich(ctx context.Context, records []enrich.Record) ([]Record, Stats, error) {
	var stats Stats
	addrs := make([]string, len(records))
	seen := make(map[string]struct{})
	var pending []string
	for i, r := range records {
		if r.Type != common.IndicatorIP {
			continue
		}
		addr, ok := LookupAddress(r.Indicator)
		if !ok {
			continue
		}
		addrs[i] = addr
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		stats.Addresses++
		if _, hit := e.cache.Get(addr); hit {
			stats.CacheHits++
			metrics.GeoCacheLookups.WithLabelValues("hit").Inc()
			continue
		}
		metrics.GeoCacheLookups.WithLabelValues("miss").Inc()
		pending = append(pending, addr)
	}

	var runErr error
	for start := 0; start < len(pending); start += e.batchSize {
		if start > 0 {
			if err := e.sleep(ctx, e.interval); err != nil {
				runErr = err
				break
			}
		}
		end := min(start+e.batchSize, len(pending))
		batch := pending[start:end]
		stats.Batches++
		stats.Requested += len(batch)

		results, err := e.resolver.Resolve(ctx, batch)
		if err != nil && ctx.Err() != nil {
			// Interrupted locally; the service never answered, so nothing is cached.
			stats.Batches--
			stats.Requested -= len(batch)
			runErr = ctx.Err()
			break
		}
		if err != nil {
			slog.Warn("geo batch failed", "size", len(batch), "err", err)
			metrics.GeoBatches.WithLabelValues("error").Inc()
			stats.Failed += len(batch)
			for _, addr := range batch {
				e.cache.Add(addr, failure(addr, "request_failed"))
			}
		} else {
			metrics.GeoBatches.WithLabelValues("ok").Inc()
			for i, res := range results {
				key := strings.TrimSpace(res.Query)
				if key == "" && i < len(batch) {
					key = batch[i]
				}
				e.cache.Add(key, res)
			}
		}
		if err := e.cache.Save(); err != nil {
			slog.Warn("failed to save geo cache", "err", err)
		}
	}

	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record{Record: r}
		if addrs[i] == "" {
			continue
		}
		res, ok := e.cache.Get(addrs[i])
		if !ok || !res.Succeeded() {
			continue
		}
		out[i].Country = res.Country
		out[i].CountryCode = res.CountryCode
		out[i].AS = res.AS
		out[i].Org = res.Org
		out[i].ISP = res.ISP
	}

	slog.Info("geo enrichment complete",
		"addresses", stats.Addresses, "cache_hits", stats.CacheHits,
		"requested", stats.Requested, "batches", stats.Batches, "failed", stats.Failed)
	return out, stats, runErr
}

// CountryCount is the number of records attributed to one country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// TopCountries returns up to n countries by record count, ties broken by name. Records
// without a country are ignored.
func TopCountries(records []Record, n int) []CountryCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Country != "" {
			counts[r.Country]++
		}
	}
	out := make([]CountryCount, 0, len(counts))
	for c, k := range counts {
		out = append(out, CountryCount{Country: c, Count: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
