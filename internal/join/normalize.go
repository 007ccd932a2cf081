// Package join matches tabular statistics to boundary regions by name.
// Providers disagree on naming ("Korea, Rep." vs "South Korea"), so keys
// pass through normalization and an alias table before matching.
package join

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// aliases maps normalized name variants to one canonical normalized form.
// Both sides of a join pass through the table, so one entry per variant
// suffices. Canonical forms must not themselves appear as keys.
var aliases = map[string]string{
	// World Bank indicator naming.
	"RUSSIAN FEDERATION":    "RUSSIA",
	"KOREA REP":             "SOUTH KOREA",
	"KOREA DEM PEOPLES REP": "NORTH KOREA",
	"EGYPT ARAB REP":        "EGYPT",
	"IRAN ISLAMIC REP":      "IRAN",
	"VENEZUELA RB":          "VENEZUELA",
	"YEMEN REP":             "YEMEN",
	"SYRIAN ARAB REPUBLIC":  "SYRIA",
	"BAHAMAS THE":           "BAHAMAS",
	"GAMBIA THE":            "GAMBIA",
	"SLOVAK REPUBLIC":       "SLOVAKIA",
	"KYRGYZ REPUBLIC":       "KYRGYZSTAN",
	"LAO PDR":               "LAOS",
	"BRUNEI DARUSSALAM":     "BRUNEI",
	"COTE DIVOIRE":          "IVORY COAST",
	"TIMOR LESTE":           "EAST TIMOR",
	"CONGO DEM REP":         "DEM REP CONGO",
	"CONGO REP":             "CONGO",
	"WEST BANK AND GAZA":    "PALESTINE",
	"HONG KONG SAR CHINA":   "HONG KONG",
	"TURKIYE":               "TURKEY",
	"VIET NAM":              "VIETNAM",
	"CABO VERDE":            "CAPE VERDE",
	"CZECH REPUBLIC":        "CZECHIA",

	// Natural Earth admin-0 naming.
	"UNITED STATES OF AMERICA":    "UNITED STATES",
	"REPUBLIC OF SERBIA":          "SERBIA",
	"UNITED REPUBLIC OF TANZANIA": "TANZANIA",
	"S SUDAN":                     "SOUTH SUDAN",
	"CENTRAL AFRICAN REP":         "CENTRAL AFRICAN REPUBLIC",
	"EQ GUINEA":                   "EQUATORIAL GUINEA",
	"DOMINICAN REP":               "DOMINICAN REPUBLIC",
	"SOLOMON IS":                  "SOLOMON ISLANDS",
	"BOSNIA AND HERZ":             "BOSNIA AND HERZEGOVINA",

	// Legacy and user-supplied variants.
	"DEMOCRATIC REPUBLIC OF THE CONGO": "DEM REP CONGO",
	"REPUBLIC OF THE CONGO":            "CONGO",
	"MACEDONIA":                        "NORTH MACEDONIA",
	"SWAZILAND":                        "ESWATINI",
	"MYANMAR BURMA":                    "MYANMAR",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// NormalizeKey standardizes a region name for matching by:
//  1. Trimming whitespace
//  2. Folding diacritics to ASCII (Côte -> Cote)
//  3. Converting to uppercase
//  4. Stripping punctuation (commas, periods, apostrophes, parentheses)
//  5. Collapsing multiple spaces into single spaces
//  6. Applying the alias table
func NormalizeKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = foldDiacritics(name)
	name = strings.ToUpper(name)

	// Remove common punctuation.
	name = strings.NewReplacer(
		",", "",
		".", "",
		"'", "",
		"\"", "",
		"(", " ",
		")", " ",
		"&", " AND ",
		"-", " ",
	).Replace(name)

	// Collapse multiple spaces.
	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	if canon, ok := aliases[name]; ok {
		return canon
	}
	return name
}

// foldDiacritics strips combining marks after NFD decomposition. The
// transform chain carries internal buffers, so it is built per call
// rather than shared across goroutines.
func foldDiacritics(s string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return folded
}
