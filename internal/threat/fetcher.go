package threat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ioccollector/internal/metrics"
)

const maxFeedBytes = 64 << 20

const (
	dropSample    = "spamhaus_drop_sample.txt"
	urlhausSample = "urlhaus_recent_sample.csv"
)

// samplesByURL is checked in order against the lowercased feed URL.
var samplesByURL = []struct{ substr, file string }{
	{"spamhaus", dropSample},
	{"urlhaus", urlhausSample},
}

var samplesByKind = map[FeedKind]string{
	KindDrop:    dropSample,
	KindURLHaus: urlhausSample,
}

// sampleName picks the bundled sample for feed: by a known source name in its URL, then by
// its kind.
func sampleName(feed Feed) string {
	url := strings.ToLower(feed.URL)
	for _, s := range samplesByURL {
		if strings.Contains(url, s.substr) {
			return s.file
		}
	}
	return samplesByKind[FeedKind(strings.ToLower(string(feed.Kind)))]
}

// HTTPFetcher downloads feeds and falls back to local samples when a download fails.
type HTTPFetcher struct {
	client  *http.Client
	dataDir string
}

// NewHTTPFetcher creates a fetcher with a bounded per-request timeout. dataDir holds the
// fallback samples.
func NewHTTPFetcher(timeout time.Duration, dataDir string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		dataDir: dataDir,
	}
}

// Fetch returns the feed text, the fallback sample text, or "" when neither is available.
func (f *HTTPFetcher) Fetch(ctx context.Context, feed Feed) string {
	text, err := f.download(ctx, feed.URL)
	if err == nil && text != "" {
		metrics.FeedFetches.WithLabelValues(feed.Name, "ok").Inc()
		return text
	}
	if err != nil {
		slog.Warn("could not fetch feed", "feed", feed.Name, "url", feed.URL, "err", err)
	}
	sample := f.readSample(feed)
	if sample == "" {
		metrics.FeedFetches.WithLabelValues(feed.Name, "empty").Inc()
		return ""
	}
	slog.Info("using local sample", "feed", feed.Name)
	metrics.FeedFetches.WithLabelValues(feed.Name, "fallback").Inc()
	return sample
}

func (f *HTTPFetcher) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

func (f *HTTPFetcher) readSample(feed Feed) string {
	path := strings.TrimSpace(feed.Sample)
	if path == "" {
		name := sampleName(feed)
		if name == "" || f.dataDir == "" {
			return ""
		}
		path = filepath.Join(f.dataDir, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not read sample", "feed", feed.Name, "path", path, "err", err)
		}
		return ""
	}
	return string(data)
}
