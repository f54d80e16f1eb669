package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"ioccollector/internal/common"
	"ioccollector/internal/enrich"
	"ioccollector/internal/geo"
)

func testRecords() []geo.Record {
	return []geo.Record{
		{
			Record:  enrich.Record{Indicator: "203.0.113.0/24", Type: common.IndicatorIP, Source: "Spamhaus DROP", RiskScore: common.RiskHigh},
			Country: "Testland", CountryCode: "TL",
		},
		{Record: enrich.Record{Indicator: "evil.example", Type: common.IndicatorDomain, Source: "URLhaus", Category: "phishing", RiskScore: common.RiskMedium}},
		{Record: enrich.Record{Indicator: "http://evil.example/login", Type: common.IndicatorURL, Source: "URLhaus", Category: "phishing", RiskScore: common.RiskLow}},
		{Record: enrich.Record{Indicator: "ABCDEF", Type: common.IndicatorHash, Source: "MalwareBazaar", Category: "malware", RiskScore: common.RiskHigh}},
	}
}

func do(t *testing.T, h http.Handler, target string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return rec.Code
}

type listResponse struct {
	Count      int          `json:"count"`
	Indicators []geo.Record `json:"indicators"`
}

func TestIndexLookup(t *testing.T) {
	idx := NewIndex(testRecords())
	if got := idx.Lookup("abcdef"); len(got) != 1 || got[0].Type != common.IndicatorHash {
		t.Fatalf("expected case-insensitive hash hit, got %+v", got)
	}
	if got := idx.Lookup("unknown.example"); got != nil {
		t.Fatalf("expected no records, got %+v", got)
	}
}

func TestListFilters(t *testing.T) {
	srv := New(NewIndex(testRecords()), &Config{})
	h := srv.Router()

	var resp listResponse
	if code := do(t, h, "/v1/indicators?risk=high", &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 high-risk indicators, got %+v", resp)
	}

	resp = listResponse{}
	do(t, h, "/v1/indicators?type=domain&category=Phishing", &resp)
	if resp.Count != 1 || resp.Indicators[0].Indicator != "evil.example" {
		t.Fatalf("unexpected domain listing: %+v", resp)
	}

	resp = listResponse{}
	do(t, h, "/v1/indicators?limit=1", &resp)
	if resp.Count != 1 {
		t.Fatalf("expected limit to apply, got %d", resp.Count)
	}

	if code := do(t, h, "/v1/indicators?type=email", nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", code)
	}
	if code := do(t, h, "/v1/indicators?risk=critical", nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown risk, got %d", code)
	}
}

func TestGetIndicator(t *testing.T) {
	h := New(NewIndex(testRecords()), &Config{}).Router()

	var resp struct {
		Records []geo.Record `json:"records"`
	}
	if code := do(t, h, "/v1/indicators/203.0.113.0%2F24", &resp); code != http.StatusOK {
		t.Fatalf("expected 200 for CIDR, got %d", code)
	}
	if len(resp.Records) != 1 || resp.Records[0].CountryCode != "TL" {
		t.Fatalf("unexpected CIDR response: %+v", resp)
	}

	resp.Records = nil
	if code := do(t, h, "/v1/indicators/http://evil.example/login", &resp); code != http.StatusOK {
		t.Fatalf("expected 200 for url indicator, got %d", code)
	}
	if len(resp.Records) != 1 || resp.Records[0].Type != common.IndicatorURL {
		t.Fatalf("unexpected url response: %+v", resp)
	}

	if code := do(t, h, "/v1/indicators/nothing.example", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestSummary(t *testing.T) {
	h := New(NewIndex(testRecords()), &Config{}).Router()
	var s Summary
	if code := do(t, h, "/v1/summary", &s); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if s.Total != 4 || s.ByRisk["HIGH"] != 2 || s.ByCategory["phishing"] != 2 || s.ByType["ip"] != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if len(s.TopCountries) != 1 || s.TopCountries[0].Country != "Testland" {
		t.Fatalf("unexpected countries: %+v", s.TopCountries)
	}
}

func TestNotLoadedAndReload(t *testing.T) {
	srv := New(nil, &Config{})
	if code := do(t, srv.Router(), "/v1/summary", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before load, got %d", code)
	}

	path := filepath.Join(t.TempDir(), "iocs_enriched_geo.csv")
	if err := geo.WriteCSV(path, testRecords()); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	if err := srv.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if code := do(t, srv.Router(), "/healthz", nil); code != http.StatusOK {
		t.Fatalf("expected 200 after reload, got %d", code)
	}
	if err := srv.Reload(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestStartMetricsServesOnReturn(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	srv := New(nil, &Config{})
	if err := srv.StartMetrics(addr); err != nil {
		t.Fatalf("start metrics: %v", err)
	}
	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if err := srv.StartMetrics(addr); err == nil {
		t.Fatal("expected error when the address is already bound")
	}
}

func TestGRPCHealthFollowsDataset(t *testing.T) {
	srv := New(nil, &Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.ServeGRPC(ln)
	defer srv.Stop()

	conn, err := grpc.NewClient(ln.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING before load, got %s", resp.GetStatus())
	}

	srv.SetIndex(NewIndex(testRecords()))
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING after load, got %s", resp.GetStatus())
	}
}
