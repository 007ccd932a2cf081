package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/fetcher"
)

// worldBankCSVURL is the bulk-download endpoint. It returns a zip holding
// the indicator CSV (API_ prefix) plus metadata files.
const worldBankCSVURL = "https://api.worldbank.org/v2/en/indicator/%s?downloadformat=csv"

// wbAggregateCodes lists the World Bank's regional and income aggregates,
// which share the country file but have no boundary to join against.
var wbAggregateCodes = map[string]bool{
	"AFE": true, "AFW": true, "ARB": true, "CEB": true, "CSS": true,
	"EAP": true, "EAR": true, "EAS": true, "ECA": true, "ECS": true,
	"EMU": true, "EUU": true, "FCS": true, "HIC": true, "HPC": true,
	"IBD": true, "IBT": true, "IDA": true, "IDB": true, "IDX": true,
	"INX": true, "LAC": true, "LCN": true, "LDC": true, "LIC": true,
	"LMC": true, "LMY": true, "LTE": true, "MEA": true, "MIC": true,
	"MNA": true, "NAC": true, "OED": true, "OSS": true, "PRE": true,
	"PSS": true, "PST": true, "SAS": true, "SSA": true, "SSF": true,
	"SST": true, "TEA": true, "TEC": true, "TLA": true, "TMN": true,
	"TSA": true, "TSS": true, "UMC": true, "WLD": true,
}

// WorldPopulation loads total population by country.
type WorldPopulation struct{}

func (d *WorldPopulation) Name() string     { return "world-population" }
func (d *WorldPopulation) Label() string    { return "Population" }
func (d *WorldPopulation) Boundary() string { return "world-countries" }

func (d *WorldPopulation) Description() string {
	return "Total population by country (World Bank SP.POP.TOTL)"
}

func (d *WorldPopulation) Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]Value, error) {
	return fetchWorldBank(ctx, f, tempDir, "SP.POP.TOTL")
}

// WorldGDP loads GDP in current US dollars by country.
type WorldGDP struct{}

func (d *WorldGDP) Name() string     { return "world-gdp" }
func (d *WorldGDP) Label() string    { return "GDP (current US$)" }
func (d *WorldGDP) Boundary() string { return "world-countries" }

func (d *WorldGDP) Description() string {
	return "GDP in current US$ by country (World Bank NY.GDP.MKTP.CD)"
}

func (d *WorldGDP) Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]Value, error) {
	return fetchWorldBank(ctx, f, tempDir, "NY.GDP.MKTP.CD")
}

// fetchWorldBank downloads an indicator's bulk CSV archive and returns the
// most recent populated value per country.
func fetchWorldBank(ctx context.Context, f fetcher.Fetcher, tempDir, indicator string) ([]Value, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "dataset: create directory %s", tempDir)
	}

	url := fmt.Sprintf(worldBankCSVURL, indicator)
	zipPath := filepath.Join(tempDir, indicator+".zip")
	zap.L().Info("dataset: downloading world bank indicator",
		zap.String("indicator", indicator),
	)
	if _, err := f.DownloadToFile(ctx, url, zipPath); err != nil {
		return nil, eris.Wrapf(err, "dataset: download indicator %s", indicator)
	}

	extractDir := filepath.Join(tempDir, indicator)
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "dataset: create directory %s", extractDir)
	}
	extracted, err := fetcher.ExtractZIP(zipPath, extractDir)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: extract indicator %s", indicator)
	}
	// The data file carries the API_ prefix; Metadata_* files ride along.
	csvPath, err := fetcher.FindByPrefix(extracted, "API_")
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: locate data csv for %s", indicator)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", csvPath)
	}
	defer func() { _ = file.Close() }()

	return parseWorldBankCSV(ctx, file)
}

// parseWorldBankCSV reads the indicator layout: two metadata records, then
// a header of "Country Name","Country Code","Indicator Name","Indicator
// Code" followed by one column per year. The most recent populated year
// wins; aggregate rows are dropped.
func parseWorldBankCSV(ctx context.Context, r io.Reader) ([]Value, error) {
	rows, errs := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		SkipRows:  2,
		HasHeader: true,
		TrimSpace: true,
	})

	var values []Value
	for row := range rows {
		if len(row) < 5 {
			continue
		}
		name, code := row[0], row[1]
		if name == "" || wbAggregateCodes[code] {
			continue
		}

		// Scan year columns right to left for the latest populated value.
		for i := len(row) - 1; i >= 4; i-- {
			if row[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(row[i], ",", ""), 64)
			if err != nil {
				continue
			}
			values = append(values, Value{Key: name, Value: v})
			break
		}
	}
	if err := <-errs; err != nil {
		return nil, eris.Wrap(err, "dataset: parse world bank csv")
	}
	if len(values) == 0 {
		return nil, eris.New("dataset: world bank csv contained no values")
	}
	return values, nil
}
