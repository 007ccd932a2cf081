package boundary

import (
	"context"

	"github.com/sells-group/atlas-cli/internal/fetcher"
)

// worldCountriesURL is the Natural Earth CDN copy of the 1:110m admin-0
// countries shapefile.
const worldCountriesURL = "https://naciscdn.org/naturalearth/110m/cultural/ne_110m_admin_0_countries.zip"

// WorldCountries loads world country boundaries from Natural Earth.
type WorldCountries struct{}

func (w *WorldCountries) Name() string { return "world-countries" }

func (w *WorldCountries) Description() string {
	return "World country boundaries (Natural Earth 1:110m admin-0)"
}

func (w *WorldCountries) URL() string { return worldCountriesURL }

func (w *WorldCountries) Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]Region, error) {
	shpPath, err := downloadShapefileZip(ctx, f, worldCountriesURL, tempDir)
	if err != nil {
		return nil, err
	}
	return decodeShapefile(shpPath, "ISO_A3", "NAME")
}
