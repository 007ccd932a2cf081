package join

import (
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/boundary"
	"github.com/sells-group/atlas-cli/internal/choropleth"
	"github.com/sells-group/atlas-cli/internal/dataset"
)

// Report summarizes a join: how many regions matched a value, which
// regions found no value (rendered with the missing fill), and which
// values found no region (dropped).
type Report struct {
	Matched          int
	UnmatchedRegions []string
	UnmatchedValues  []string
}

// Clean reports whether every region matched and every value was used.
func (r Report) Clean() bool {
	return len(r.UnmatchedRegions) == 0 && len(r.UnmatchedValues) == 0
}

// Log writes the report. Mismatches log at warn so partial joins are
// visible without failing the render.
func (r Report) Log(name string) {
	if r.Clean() {
		zap.L().Debug("join: complete match",
			zap.String("map", name),
			zap.Int("matched", r.Matched),
		)
		return
	}
	zap.L().Warn("join: partial match",
		zap.String("map", name),
		zap.Int("matched", r.Matched),
		zap.Int("unmatched_regions", len(r.UnmatchedRegions)),
		zap.Int("unmatched_values", len(r.UnmatchedValues)),
		zap.Strings("regions", r.UnmatchedRegions),
		zap.Strings("values", r.UnmatchedValues),
	)
}

// Join left-joins values onto regions by normalized name. Every region
// appears in the result in input order; regions without a value carry a
// nil pointer. Duplicate value keys resolve to the last occurrence.
func Join(regions []boundary.Region, values []dataset.Value) (choropleth.Collection, Report) {
	byKey := make(map[string]float64, len(values))
	for _, v := range values {
		byKey[NormalizeKey(v.Key)] = v.Value
	}

	used := make(map[string]bool, len(values))
	coll := make(choropleth.Collection, 0, len(regions))
	report := Report{}

	for _, region := range regions {
		key := NormalizeKey(region.Name)
		r := choropleth.Region{
			Name:     region.Name,
			Geometry: region.Geometry,
		}
		if v, ok := byKey[key]; ok {
			value := v
			r.Value = &value
			used[key] = true
			report.Matched++
		} else {
			report.UnmatchedRegions = append(report.UnmatchedRegions, region.Name)
		}
		coll = append(coll, r)
	}

	seen := make(map[string]bool, len(values))
	for _, v := range values {
		key := NormalizeKey(v.Key)
		if used[key] || seen[key] {
			continue
		}
		seen[key] = true
		report.UnmatchedValues = append(report.UnmatchedValues, v.Key)
	}

	return coll, report
}
