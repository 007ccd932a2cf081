package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/fetcher"
)

// beaWorkbookURL points at the GDP-by-state release tables. BEA archives
// each release under a dated path, so the URL moves with every vintage;
// bea.workbook_url in the config overrides it.
const beaWorkbookURL = "https://apps.bea.gov/regional/histdata/releases/0625gdpstate/gdpstate0625.xlsx"

// beaAggregateAreas lists the BEA regions that share the state tables.
var beaAggregateAreas = map[string]bool{
	"United States":  true,
	"New England":    true,
	"Mideast":        true,
	"Great Lakes":    true,
	"Plains":         true,
	"Southeast":      true,
	"Southwest":      true,
	"Rocky Mountain": true,
	"Far West":       true,
}

// StateGDP loads current-dollar GDP by state from the BEA release
// workbook.
type StateGDP struct {
	// WorkbookURL overrides the default release workbook.
	WorkbookURL string
	// SkipRows discards the table title block; the default matches the
	// current release layout.
	SkipRows int
}

func (d *StateGDP) Name() string     { return "us-state-gdp" }
func (d *StateGDP) Label() string    { return "GDP ($M)" }
func (d *StateGDP) Boundary() string { return "us-states" }

func (d *StateGDP) Description() string {
	return "Current-dollar GDP by state (BEA regional accounts)"
}

func (d *StateGDP) Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]Value, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "dataset: create directory %s", tempDir)
	}

	url := d.WorkbookURL
	if url == "" {
		url = beaWorkbookURL
	}
	skipRows := d.SkipRows
	if skipRows == 0 {
		skipRows = 4
	}

	path := filepath.Join(tempDir, "bea-gdpstate.xlsx")
	zap.L().Info("dataset: downloading bea workbook", zap.String("url", url))
	if _, err := f.DownloadToFile(ctx, url, path); err != nil {
		return nil, eris.Wrap(err, "dataset: download bea workbook")
	}

	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SkipRows: skipRows})
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read bea workbook")
	}
	return parseBEARows(rows)
}

// parseBEARows extracts one value per state from release-table rows: the
// area name in the first column, periods in the rest. The most recent
// populated period wins. Aggregate and footnote rows drop out.
func parseBEARows(rows [][]string) ([]Value, error) {
	var values []Value
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" || beaAggregateAreas[name] {
			continue
		}

		for i := len(row) - 1; i >= 1; i-- {
			v, ok := parseBEANumber(row[i])
			if !ok {
				continue
			}
			values = append(values, Value{Key: name, Value: v})
			break
		}
	}
	if len(values) == 0 {
		return nil, eris.New("dataset: bea workbook contained no state rows")
	}
	return values, nil
}

// parseBEANumber parses a workbook cell, tolerating grouped digits and
// the agency's suppression markers ("(D)", "(NA)", "--").
func parseBEANumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || strings.HasPrefix(s, "(") || s == "--" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
