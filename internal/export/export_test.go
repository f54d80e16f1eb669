package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"ioccollector/internal/common"
	"ioccollector/internal/enrich"
	"ioccollector/internal/geo"
)

func TestCategoryFileName(t *testing.T) {
	tests := map[string]string{
		"malware_download":    "iocs_malware_download.csv",
		"command and control": "iocs_command_and_control.csv",
		"c2/botnet":           "iocs_c2_botnet.csv",
	}
	for in, want := range tests {
		if got := CategoryFileName(in); got != want {
			t.Fatalf("CategoryFileName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestByCategory(t *testing.T) {
	dir := t.TempDir()
	records := []enrich.Record{
		{Indicator: "a.example", Type: common.IndicatorDomain, Category: "phishing"},
		{Indicator: "1.2.3.4", Type: common.IndicatorIP},
		{Indicator: "b.example", Type: common.IndicatorDomain, Category: "phishing"},
		{Indicator: "ABC", Type: common.IndicatorHash, Category: "malware download"},
	}
	paths, err := ByCategory(dir, records)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := []string{
		filepath.Join(dir, "iocs_malware_download.csv"),
		filepath.Join(dir, "iocs_phishing.csv"),
	}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	got, err := enrich.ReadCSV(want[1])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0].Indicator != "a.example" || got[1].Indicator != "b.example" {
		t.Fatalf("unexpected phishing rows: %+v", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("expected no export for empty category, got %d files", len(entries))
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "iocs.sqlite")
	records := []geo.Record{
		{Record: enrich.Record{Indicator: "1.2.3.4", Type: common.IndicatorIP, RiskScore: common.RiskHigh}, CountryCode: "TL"},
		{Record: enrich.Record{Indicator: "a.example", Type: common.IndicatorDomain, RiskScore: common.RiskLow}},
	}
	ctx := context.Background()
	if err := SQLite(ctx, path, records); err != nil {
		t.Fatalf("export: %v", err)
	}
	// a second export replaces the previous contents
	if err := SQLite(ctx, path, records[:1]); err != nil {
		t.Fatalf("re-export: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM indicators`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	var code, risk string
	if err := db.QueryRow(`SELECT geo_country_code, risk_score FROM indicators WHERE indicator = ?`, "1.2.3.4").Scan(&code, &risk); err != nil {
		t.Fatalf("select: %v", err)
	}
	if code != "TL" || risk != "HIGH" {
		t.Fatalf("unexpected row: %s %s", code, risk)
	}
}
