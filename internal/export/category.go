// Package export writes derived views of the enriched dataset.
package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"ioccollector/internal/enrich"
)

var categoryReplacer = strings.NewReplacer(" ", "_", "/", "_")

// CategoryFileName returns the file name used for category, e.g. "iocs_command_and_control.csv".
func CategoryFileName(category string) string {
	return "iocs_" + categoryReplacer.Replace(category) + ".csv"
}

// ByCategory writes one CSV per non-empty category into dir, in category order. It returns
// the paths written.
func ByCategory(dir string, records []enrich.Record) ([]string, error) {
	groups := make(map[string][]enrich.Record)
	for _, r := range records {
		if r.Category == "" {
			continue
		}
		groups[r.Category] = append(groups[r.Category], r)
	}
	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	paths := make([]string, 0, len(categories))
	for _, c := range categories {
		path := filepath.Join(dir, CategoryFileName(c))
		if err := enrich.WriteCSV(path, groups[c]); err != nil {
			return paths, fmt.Errorf("export category %q: %w", c, err)
		}
		slog.Info("wrote category export", "path", path, "rows", len(groups[c]))
		paths = append(paths, path)
	}
	return paths, nil
}
