package geo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultURL      = "http://ip-api.com/batch"
	DefaultTimeout  = 15 * time.Second
	DefaultInterval = 1500 * time.Millisecond
	// MaxBatch is the largest number of addresses the batch service accepts per request.
	MaxBatch = 100
)

// BatchClient queries an ip-api compatible batch endpoint.
type BatchClient struct {
	url    string
	client *http.Client
}

// NewBatchClient creates a client for url with the given request timeout.
func NewBatchClient(url string, timeout time.Duration) *BatchClient {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BatchClient{url: url, client: &http.Client{Timeout: timeout}}
}

// Resolve posts addrs as a JSON array and decodes the JSON array of results.
func (c *BatchClient) Resolve(ctx context.Context, addrs []string) ([]Result, error) {
	body, err := json.Marshal(addrs)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("geo batch: unexpected status %s", resp.Status)
	}

	var results []Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geo batch: decode response: %w", err)
	}
	return results, nil
}
