// Package classify implements the edge classifier: a closed, ordered
// list of rules that tags every pedestrian edge PASS, LIMITED, or
// BLOCKED with a blocker kind, confidence, and human-readable signals.
package classify

import (
	"math"
	"strconv"
	"strings"

	"github.com/accessmap/aae/pkg/models"
)

// roughSurfaces are surface tag values treated as rough (spec §4.3).
var roughSurfaces = map[string]bool{
	"unpaved":            true,
	"gravel":             true,
	"dirt":               true,
	"grass":              true,
	"mud":                true,
	"sand":               true,
	"ground":             true,
	"cobblestone":        true,
	"sett":               true,
	"unhewn_cobblestone": true,
	"pebblestone":        true,
	"woodchips":          true,
}

// poorSmoothness are smoothness tag values treated as poor (spec §4.3).
var poorSmoothness = map[string]bool{
	"bad":           true,
	"very_bad":      true,
	"horrible":      true,
	"very_horrible": true,
	"impassable":    true,
}

var blockedAccessValues = map[string]bool{
	"no":       true,
	"private":  true,
	"military": true,
}

// InclineThreshold is the minimum parsed grade, as a fraction, that
// classifies an edge LIMITED/steep_incline (spec §4.3: 8%).
const InclineThreshold = 0.08

// Edge classifies a single edge's tags, given whether either endpoint is
// in the raised-kerb set.
func Edge(tags map[string]string, fromRaisedKerb, toRaisedKerb bool) models.Classification {
	if tags["highway"] == "steps" {
		return blocked(models.BlockerStairs, "Stairs present (highway=steps)")
	}
	if tags["wheelchair"] == "no" {
		return blocked(models.BlockerWheelchairNo, "Not wheelchair accessible (wheelchair=no)")
	}
	if blockedAccessValues[tags["access"]] || blockedAccessValues[tags["foot"]] {
		return blocked(models.BlockerAccessNo, "Access restricted (access/foot=no|private|military)")
	}
	if fromRaisedKerb || toRaisedKerb {
		return blocked(models.BlockerRaisedKerb, "Raised kerb at endpoint blocks wheelchair crossing")
	}
	if tags["wheelchair"] == "limited" {
		return limited(models.BlockerWheelchairLimited, models.ConfidenceHigh,
			"Limited wheelchair accessibility (wheelchair=limited)")
	}
	if grade, ok := parseIncline(tags["incline"]); ok && grade >= InclineThreshold {
		return limited(models.BlockerSteepIncline, models.ConfidenceMedium,
			"Steep incline ("+strconv.FormatFloat(grade*100, 'f', 1, 64)+"%)")
	}
	if roughSurfaces[tags["surface"]] {
		return limited(models.BlockerRoughSurface, models.ConfidenceMedium,
			"Rough surface (surface="+tags["surface"]+")")
	}
	if poorSmoothness[tags["smoothness"]] {
		return limited(models.BlockerRoughSurface, models.ConfidenceMedium,
			"Poor smoothness (smoothness="+tags["smoothness"]+")")
	}
	return models.Classification{
		Status:     models.StatusPass,
		Kind:       models.BlockerNone,
		Confidence: models.ConfidenceMedium,
		Quality:    1.0,
	}
}

func blocked(kind models.BlockerKind, signal string) models.Classification {
	return models.Classification{
		Status:     models.StatusBlocked,
		Kind:       kind,
		Confidence: models.ConfidenceHigh,
		Signals:    []string{signal},
		Quality:    0,
	}
}

func limited(kind models.BlockerKind, confidence models.Confidence, signal string) models.Classification {
	return models.Classification{
		Status:     models.StatusLimited,
		Kind:       kind,
		Confidence: confidence,
		Signals:    []string{signal},
		Quality:    0.55,
	}
}

// parseIncline parses an OSM incline tag value into a grade fraction
// (0.08 == 8%). It handles plain numbers, percentages, and degrees;
// magnitudes <= 1 are treated as unit fractions already (so "0.08"
// means 8%, while "8" means 8%, i.e. interpreted as a bare percentage
// figure). Non-numeric values ("up", "down", "") report ok=false.
func parseIncline(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	switch s {
	case "up", "down":
		return 0, false
	}

	isDegrees := strings.HasSuffix(s, "°")
	isPercent := strings.HasSuffix(s, "%")
	numPart := strings.TrimSuffix(strings.TrimSuffix(s, "%"), "°")
	numPart = strings.TrimSpace(numPart)

	v, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, false
	}
	v = absFloat(v)

	switch {
	case isDegrees:
		return tanDegrees(v), true
	case isPercent:
		return v / 100, true
	case v <= 1:
		return v, true
	default:
		return v / 100, true
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// tanDegrees converts a slope angle in degrees to a grade fraction.
func tanDegrees(deg float64) float64 {
	return math.Tan(deg * math.Pi / 180)
}
