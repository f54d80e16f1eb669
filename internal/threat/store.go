package threat

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"ioccollector/internal/common"
	"ioccollector/internal/dataset"
)

// Columns is the fixed column order of the normalized dataset.
var Columns = []string{"indicator", "type", "source", "first_seen", "category"}

func (r Record) row() []string {
	return []string{r.Indicator, string(r.Type), r.Source, r.FirstSeen, r.Category}
}

// WriteRecordsCSV writes records to path in the normalized column order.
func WriteRecordsCSV(path string, records []Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.row())
	}
	return dataset.WriteCSV(path, Columns, rows)
}

// WriteRecordsJSON writes records to path as a JSON array.
func WriteRecordsJSON(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	return dataset.WriteJSON(path, records)
}

// ReadRecordsCSV reads a normalized dataset. Missing columns read as empty strings; values are
// returned as stored, without re-normalization.
func ReadRecordsCSV(path string) ([]Record, error) {
	rows, err := dataset.ReadCSV(path, Columns)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record{
			Indicator: row["indicator"],
			Type:      common.IndicatorType(row["type"]),
			Source:    row["source"],
			FirstSeen: row["first_seen"],
			Category:  row["category"],
		})
	}
	return out, nil
}

// FileStore writes the collection outputs into a directory: iocs.csv, iocs.json and one CSV
// per ip, domain and hash type.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// Path returns the location of the main CSV dataset.
func (s *FileStore) Path() string { return filepath.Join(s.dir, "iocs.csv") }

func (s *FileStore) SaveRecords(ctx context.Context, records []Record) error {
	if err := WriteRecordsCSV(s.Path(), records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := WriteRecordsJSON(filepath.Join(s.dir, "iocs.json"), records); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	split := map[common.IndicatorType]string{
		common.IndicatorIP:     "iocs_ips.csv",
		common.IndicatorDomain: "iocs_domains.csv",
		common.IndicatorHash:   "iocs_hashes.csv",
	}
	counts := make(map[common.IndicatorType]int, len(split))
	for typ, name := range split {
		subset := FilterByType(records, typ)
		counts[typ] = len(subset)
		if err := WriteRecordsCSV(filepath.Join(s.dir, name), subset); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	slog.Info("stored indicators", "dir", s.dir, "count", len(records),
		"ips", counts[common.IndicatorIP],
		"domains", counts[common.IndicatorDomain],
		"hashes", counts[common.IndicatorHash])
	return nil
}

// FilterByType returns the records of type typ in their original order.
func FilterByType(records []Record, typ common.IndicatorType) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}
