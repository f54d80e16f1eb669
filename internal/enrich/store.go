package enrich

import (
	"ioccollector/internal/common"
	"ioccollector/internal/dataset"
)

// Columns is the fixed column order of the enriched dataset.
var Columns = []string{"indicator", "type", "source", "first_seen", "last_seen", "category", "risk_score"}

// Row returns the record's values in Columns order.
func (r Record) Row() []string {
	return []string{r.Indicator, string(r.Type), r.Source, r.FirstSeen, r.LastSeen, r.Category, string(r.RiskScore)}
}

// FromRow builds a record from a dataset row.
func FromRow(row dataset.Row) Record {
	return Record{
		Indicator: row["indicator"],
		Type:      common.IndicatorType(row["type"]),
		Source:    row["source"],
		FirstSeen: row["first_seen"],
		LastSeen:  row["last_seen"],
		Category:  row["category"],
		RiskScore: common.RiskLevel(row["risk_score"]),
	}
}

// WriteCSV writes the enriched dataset to path.
func WriteCSV(path string, records []Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	return dataset.WriteCSV(path, Columns, rows)
}

// ReadCSV reads an enriched dataset; missing columns read as "".
func ReadCSV(path string) ([]Record, error) {
	rows, err := dataset.ReadCSV(path, Columns)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}
