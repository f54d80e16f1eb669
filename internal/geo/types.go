// Package geo resolves ip indicators to geolocation data through a persistent cache and a
// rate-limited batch lookup service.
package geo

import (
	"context"
	"net/netip"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"ioccollector/internal/dataset"
	"ioccollector/internal/enrich"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Result is one lookup answer as returned by the batch service and stored in the cache.
// Fields the service returns beyond the typed ones are kept and written back unchanged.
type Result struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	Query       string `json:"query"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	AS          string `json:"as,omitempty"`
	Org         string `json:"org,omitempty"`
	ISP         string `json:"isp,omitempty"`

	extra map[string]jsoniter.RawMessage
}

// resultFields has Result's layout without its JSON methods.
type resultFields Result

var resultKeys = []string{"status", "message", "query", "country", "countryCode", "as", "org", "isp"}

func (r *Result) UnmarshalJSON(data []byte) error {
	var fields resultFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range resultKeys {
		delete(all, k)
	}
	fields.extra = nil
	if len(all) > 0 {
		fields.extra = all
	}
	*r = Result(fields)
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(resultFields(r))
	if err != nil || len(r.extra) == 0 {
		return typed, err
	}
	out := make(map[string]jsoniter.RawMessage, len(r.extra)+len(resultKeys))
	for k, v := range r.extra {
		out[k] = v
	}
	var known map[string]jsoniter.RawMessage
	if err := json.Unmarshal(typed, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		out[k] = v
	}
	return json.Marshal(out)
}

// Extra returns the raw value of a service field that has no typed counterpart.
func (r Result) Extra(key string) (jsoniter.RawMessage, bool) {
	v, ok := r.extra[key]
	return v, ok
}

// Succeeded reports whether the lookup produced usable data.
func (r Result) Succeeded() bool { return r.Status == StatusSuccess }

func failure(addr, message string) Result {
	return Result{Status: StatusFail, Query: addr, Message: message}
}

// Resolver answers lookups for a batch of addresses. Results are matched to addresses by their
// Query field, falling back to position.
type Resolver interface {
	Resolve(ctx context.Context, addrs []string) ([]Result, error)
}

// Record is an enriched record with geo columns. Geo values are empty unless the record is an
// ip with a successful lookup.
type Record struct {
	enrich.Record
	Country     string `json:"geo_country"`
	CountryCode string `json:"geo_country_code"`
	AS          string `json:"geo_as"`
	Org         string `json:"geo_org"`
	ISP         string `json:"geo_isp"`
}

// Columns is the column order of the geo-enriched dataset.
var Columns = append(append([]string(nil), enrich.Columns...),
	"geo_country", "geo_country_code", "geo_as", "geo_org", "geo_isp")

// Row returns the record's values in Columns order.
func (r Record) Row() []string {
	return append(r.Record.Row(), r.Country, r.CountryCode, r.AS, r.Org, r.ISP)
}

// WriteCSV writes the geo-enriched dataset.
func WriteCSV(path string, records []Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	return dataset.WriteCSV(path, Columns, rows)
}

// ReadCSV reads a geo-enriched dataset; missing columns read as "".
func ReadCSV(path string) ([]Record, error) {
	rows, err := dataset.ReadCSV(path, Columns)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record{
			Record:      enrich.FromRow(row),
			Country:     row["geo_country"],
			CountryCode: row["geo_country_code"],
			AS:          row["geo_as"],
			Org:         row["geo_org"],
			ISP:         row["geo_isp"],
		})
	}
	return out, nil
}

// LookupAddress returns the address queried for an ip indicator: the network address of a
// CIDR, or the indicator itself when it is a valid address.
func LookupAddress(indicator string) (string, bool) {
	indicator = strings.TrimSpace(indicator)
	if strings.Contains(indicator, "/") {
		prefix, err := netip.ParsePrefix(indicator)
		if err != nil {
			return "", false
		}
		return prefix.Masked().Addr().String(), true
	}
	addr, err := netip.ParseAddr(indicator)
	if err != nil {
		return "", false
	}
	return addr.String(), true
}
