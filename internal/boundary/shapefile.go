package boundary

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/fetcher"
)

// downloadShapefileZip fetches a zipped shapefile and returns the path of
// the extracted .shp. An archive already present in destDir is reused, so
// repeat renders do not hit the provider again.
func downloadShapefileZip(ctx context.Context, f fetcher.Fetcher, url, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "boundary: create directory %s", destDir)
	}

	zipName := url[strings.LastIndex(url, "/")+1:]
	zipPath := filepath.Join(destDir, zipName)

	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		zap.L().Debug("boundary: reusing cached archive", zap.String("path", zipPath))
	} else {
		zap.L().Info("boundary: downloading archive", zap.String("url", url))
		if _, err := f.DownloadToFile(ctx, url, zipPath); err != nil {
			return "", eris.Wrapf(err, "boundary: download %s", url)
		}
	}

	extractDir := filepath.Join(destDir, strings.TrimSuffix(zipName, ".zip"))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "boundary: create directory %s", extractDir)
	}
	extracted, err := fetcher.ExtractZIP(zipPath, extractDir)
	if err != nil {
		return "", eris.Wrapf(err, "boundary: extract %s", zipPath)
	}
	return fetcher.FindByExt(extracted, ".shp")
}

// decodeShapefile reads regions from a shapefile, taking the key and name
// from the named DBF fields. Records without polygonal geometry or a name
// are skipped rather than failing the whole set.
func decodeShapefile(shpPath, keyField, nameField string) ([]Region, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := make(map[string]int)
	for i, f := range reader.Fields() {
		// DBF field names are fixed-width and NUL padded.
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToUpper(name)] = i
	}

	keyIdx, ok := fieldIdx[strings.ToUpper(keyField)]
	if !ok {
		return nil, eris.Errorf("boundary: field %q not found in %s", keyField, shpPath)
	}
	nameIdx, ok := fieldIdx[strings.ToUpper(nameField)]
	if !ok {
		return nil, eris.Errorf("boundary: field %q not found in %s", nameField, shpPath)
	}

	var regions []Region
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		g := shapeToMultiPolygon(shape)
		if g == nil {
			skipped++
			continue
		}

		name := attribute(reader, nameIdx)
		if name == "" {
			skipped++
			continue
		}

		regions = append(regions, Region{
			Key:      attribute(reader, keyIdx),
			Name:     name,
			Geometry: g,
		})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	if len(regions) == 0 {
		return nil, eris.Errorf("boundary: no usable records in %s", shpPath)
	}
	return regions, nil
}

func attribute(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// shapeToMultiPolygon converts a shapefile polygon into a geom.MultiPolygon.
// Each part becomes one single-ring polygon. Non-polygonal shapes and shapes
// with no valid rings yield nil.
func shapeToMultiPolygon(shape shp.Shape) geom.T {
	poly, ok := shape.(*shp.Polygon)
	if !ok {
		return nil
	}

	numParts := len(poly.Parts)
	if numParts == 0 || len(poly.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := 0; i < numParts; i++ {
		start := poly.Parts[i]
		end := int32(len(poly.Points))
		if i < numParts-1 {
			end = poly.Parts[i+1]
		}
		if end <= start {
			continue
		}

		ring := make([]geom.Coord, 0, end-start+1)
		for j := start; j < end; j++ {
			pt := poly.Points[j]
			ring = append(ring, geom.Coord{pt.X, pt.Y})
		}
		// Shapefile rings are closed by convention; repair any that are not.
		if first, last := ring[0], ring[len(ring)-1]; first[0] != last[0] || first[1] != last[1] {
			ring = append(ring, geom.Coord{first[0], first[1]})
		}
		if len(ring) < 4 {
			continue
		}

		part := geom.NewPolygon(geom.XY)
		if _, err := part.SetCoords([][]geom.Coord{ring}); err != nil {
			continue
		}
		if err := mp.Push(part); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp.SetSRID(srid4326)
}
