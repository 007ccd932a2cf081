package boundary

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/fetcher"
)

// Census cartographic boundary files, 1:20m generalization. The FTP mirror
// carries the same tree and tends to stay up when the HTTPS front end is
// throttling.
const (
	usStatesURL    = "https://www2.census.gov/geo/tiger/GENZ2023/shp/cb_2023_us_state_20m.zip"
	usStatesFTPURL = "ftp://ftp2.census.gov/geo/tiger/GENZ2023/shp/cb_2023_us_state_20m.zip"
)

// islandTerritories are the Pacific and Caribbean island areas in the
// cartographic boundary file. Guam and the Marianas sit past 140°E, so
// keeping them stretches a linear viewport fit across the whole globe.
var islandTerritories = map[string]bool{
	"AS": true,
	"GU": true,
	"MP": true,
	"VI": true,
}

// USStates loads state boundaries from the Census Bureau. DC and Puerto
// Rico are always included; the remote island territories only when
// IncludeTerritories is set.
type USStates struct {
	IncludeTerritories bool
}

func (u *USStates) Name() string { return "us-states" }

func (u *USStates) Description() string {
	return "US state boundaries (Census cartographic boundary files, 1:20m)"
}

func (u *USStates) URL() string { return usStatesURL }

func (u *USStates) Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]Region, error) {
	shpPath, err := downloadShapefileZip(ctx, f, usStatesURL, tempDir)
	if err != nil {
		zap.L().Warn("boundary: https download failed, trying census ftp mirror",
			zap.Error(err),
		)
		ftpFetcher := fetcher.NewFTPFetcher(fetcher.FTPOptions{})
		shpPath, err = downloadShapefileZip(ctx, ftpFetcher, usStatesFTPURL, tempDir)
		if err != nil {
			return nil, eris.Wrap(err, "boundary: census ftp mirror")
		}
	}
	regions, err := decodeShapefile(shpPath, "STUSPS", "NAME")
	if err != nil {
		return nil, err
	}
	if u.IncludeTerritories {
		return regions, nil
	}
	return dropIslandTerritories(regions), nil
}

func dropIslandTerritories(regions []Region) []Region {
	kept := regions[:0]
	for _, r := range regions {
		if islandTerritories[r.Key] {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
