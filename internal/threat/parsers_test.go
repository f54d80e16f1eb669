package threat

import (
	"strings"
	"testing"
	"time"
)

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = prev })
}

func TestParseDropList(t *testing.T) {
	fixClock(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	text := strings.Join([]string{
		"; Spamhaus DROP List",
		"# comment",
		"",
		"203.0.113.0/24 ; SBL123",
		"198.51.100.7",
		"not-an-ip ; x",
		"10.0.0.0/123 ; bad prefix",
		"  192.0.2.0/25;SBL9  ",
	}, "\n")

	got := ParseDropList(text, "Spamhaus DROP")
	want := []string{"203.0.113.0/24", "198.51.100.7", "192.0.2.0/25"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d: %+v", len(want), len(got), got)
	}
	for i, rec := range got {
		if rec.Indicator != want[i] {
			t.Fatalf("record %d: expected %q, got %q", i, want[i], rec.Indicator)
		}
		if rec.Type != "ip" || rec.Source != "Spamhaus DROP" {
			t.Fatalf("unexpected record: %+v", rec)
		}
		if rec.FirstSeen != "2024-05-01T10:00:00Z" {
			t.Fatalf("unexpected first_seen %q", rec.FirstSeen)
		}
	}
}

func TestParseURLList(t *testing.T) {
	fixClock(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	text := strings.Join([]string{
		"################################",
		"# id,dateadded,url,url_status,last_online,threat,tags,urlhaus_link,reporter",
		`id,dateadded,url,url_status,threat,urlhaus_link,reporter`,
		`"1","2024-04-30 12:00:00","http://Evil.Example/path/a.exe","online","Malware_Download","https://urlhaus.abuse.ch/url/1/","r"`,
		`"2","","https://phish.example:8443/login?x=1","offline","phishing","l","r"`,
		`"3","2024-04-30 12:00:00","bare.example/x","online","",""`,
		`"4","2024-04-30"`,
		`"5","2024-04-30","","online","malware_download"`,
	}, "\n")

	got := ParseURLList(text, "URLhaus")
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(got), got)
	}
	if got[0].Indicator != "evil.example" || got[0].Category != "malware_download" || got[0].FirstSeen != "2024-04-30 12:00:00" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[0].Type != "domain" || got[0].Source != "URLhaus" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].Indicator != "phish.example:8443" || got[1].FirstSeen != "2024-05-01T10:00:00Z" || got[1].Category != "phishing" {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
	if got[2].Indicator != "bare.example" || got[2].Category != "" {
		t.Fatalf("unexpected third record: %+v", got[2])
	}
}

func TestParseHashListColumn(t *testing.T) {
	valid := strings.Repeat("AB", 32)
	text := strings.Join([]string{
		"first_seen, SHA256 ,md5",
		"2024-01-01," + valid + ",abc",
		"2024-01-01,nothex,abc",
		"2024-01-01",
		"x," + strings.Repeat("c", 63) + ",y",
	}, "\n")

	got := ParseHashList(text, "MalwareBazaar")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d: %+v", len(got), got)
	}
	if got[0].Indicator != strings.ToLower(valid) || got[0].Type != "hash" {
		t.Fatalf("unexpected record: %+v", got[0])
	}
}

func TestParseHashListScanFallback(t *testing.T) {
	h1 := strings.Repeat("a", 64)
	h2 := strings.Repeat("F", 64)
	text := strings.Join([]string{
		`"first_seen_utc","sha256_hash","md5_hash"`,
		`"2024-01-01", "` + h1 + `", "d41d8cd98f00b204e9800998ecf8427e"`,
		`"` + h2 + `","x"`,
	}, "\n")

	got := ParseHashList(text, "MalwareBazaar")
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(got), got)
	}
	if got[0].Indicator != h1 || got[1].Indicator != strings.ToLower(h2) {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestParserFor(t *testing.T) {
	for _, kind := range []FeedKind{KindDrop, KindFeodo, KindURLHaus, KindHashList, "DROP"} {
		if _, ok := ParserFor(kind); !ok {
			t.Fatalf("expected parser for %q", kind)
		}
	}
	if _, ok := ParserFor("mixed"); ok {
		t.Fatalf("expected no parser for unknown kind")
	}
	parse, _ := ParserFor(KindFeodo)
	if got := parse("192.0.2.1\n", "Feodo"); len(got) != 1 || got[0].Type != "ip" {
		t.Fatalf("feodo kind should parse bare ip lists: %+v", got)
	}
}
