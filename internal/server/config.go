package server

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds pipeline and server configuration
type Config struct {
	FeedsFile    string
	OutputDir    string
	DataDir      string
	FetchTimeout time.Duration
	RulesFile    string

	GeoURL      string
	GeoTimeout  time.Duration
	GeoInterval time.Duration
	GeoCache    string
	GeoIPDB     string
	GeoIPASNDB  string

	SQLitePath string

	HTTPAddr    string
	MetricsAddr string
	GRPCAddr    string
}

// LoadConfig reads environment variables and returns a Config
func LoadConfig() *Config {
	dataDir := getEnv("IOC_DATA_DIR", "data")
	return &Config{
		FeedsFile:    getEnv("IOC_FEEDS_FILE", "feeds.json"),
		OutputDir:    getEnv("IOC_OUTPUT_DIR", "output"),
		DataDir:      dataDir,
		FetchTimeout: getDuration("IOC_FETCH_TIMEOUT", 20*time.Second),
		RulesFile:    getEnv("IOC_RULES_FILE", ""),

		GeoURL:      getEnv("IOC_GEO_URL", "http://ip-api.com/batch"),
		GeoTimeout:  getDuration("IOC_GEO_TIMEOUT", 15*time.Second),
		GeoInterval: getDuration("IOC_GEO_INTERVAL", 1500*time.Millisecond),
		GeoCache:    getEnv("IOC_GEO_CACHE", filepath.Join(dataDir, "ip_geo_cache.json")),
		GeoIPDB:     getEnv("IOC_GEOIP_DB", ""),
		GeoIPASNDB:  getEnv("IOC_GEOIP_ASN_DB", ""),

		SQLitePath: getEnv("IOC_SQLITE_PATH", ""),

		HTTPAddr:    getEnv("IOC_HTTP_ADDR", ":8080"),
		MetricsAddr: getEnv("IOC_METRICS_ADDR", ":9090"),
		GRPCAddr:    getEnv("IOC_GRPC_ADDR", ":9091"),
	}
}

// CollectedPath is the deduplicated dataset written by the collector.
func (c *Config) CollectedPath() string { return filepath.Join(c.OutputDir, "iocs.csv") }

// EnrichedPath is the aggregated, risk-scored dataset.
func (c *Config) EnrichedPath() string { return filepath.Join(c.OutputDir, "iocs_enriched.csv") }

// GeoPath is the geo-enriched dataset served by the API.
func (c *Config) GeoPath() string { return filepath.Join(c.OutputDir, "iocs_enriched_geo.csv") }

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getDuration accepts Go durations ("1500ms") or a bare number of seconds.
func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	slog.Warn("invalid duration, using default", "var", k, "value", v, "default", def)
	return def
}
