package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ioc_feed_fetches_total",
			Help: "Feed fetch attempts by outcome (ok, fallback, empty)",
		},
		[]string{"feed", "outcome"},
	)

	RecordsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ioc_records_parsed_total",
			Help: "Candidate records produced by feed parsers",
		},
		[]string{"feed"},
	)

	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ioc_records_dropped_total",
			Help: "Records dropped during collection",
		},
		[]string{"stage"},
	)

	GeoBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ioc_geo_batches_total",
			Help: "Geolocation batch requests by result",
		},
		[]string{"result"},
	)

	GeoCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ioc_geo_cache_lookups_total",
			Help: "Geo cache lookups for ip indicators",
		},
		[]string{"result"},
	)

	IndicatorsByRisk = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ioc_indicators",
			Help: "Aggregated indicators by risk score",
		},
		[]string{"risk"},
	)

	RulesMatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ioc_risk_rules_matched_total",
			Help: "Risk rules matched during scoring",
		},
		[]string{"rule"},
	)
)
