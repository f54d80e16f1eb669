package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"ioccollector/internal/geo"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS indicators (
    indicator TEXT NOT NULL,
    type TEXT NOT NULL,
    source TEXT,
    first_seen TEXT,
    last_seen TEXT,
    category TEXT,
    risk_score TEXT,
    geo_country TEXT,
    geo_country_code TEXT,
    geo_as TEXT,
    geo_org TEXT,
    geo_isp TEXT,
    PRIMARY KEY (indicator, type)
);
CREATE INDEX IF NOT EXISTS idx_indicators_risk ON indicators(risk_score);
CREATE INDEX IF NOT EXISTS idx_indicators_category ON indicators(category);`

// SQLite writes the geo-enriched dataset into the indicators table of the database at path,
// replacing the table's previous contents in a single transaction.
func SQLite(ctx context.Context, path string, records []geo.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("sqlite export: ensure dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlite export: open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite export: schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite export: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM indicators`); err != nil {
		return fmt.Errorf("sqlite export: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO indicators (
    indicator, type, source, first_seen, last_seen, category, risk_score,
    geo_country, geo_country_code, geo_as, geo_org, geo_isp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite export: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Indicator, string(r.Type), r.Source, r.FirstSeen, r.LastSeen, r.Category, string(r.RiskScore),
			r.Country, r.CountryCode, r.AS, r.Org, r.ISP,
		); err != nil {
			return fmt.Errorf("sqlite export: insert %s: %w", r.Indicator, err)
		}
	}
	return tx.Commit()
}
