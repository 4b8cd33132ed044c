// Package scoring computes the Network Accessibility Score (NAS),
// Opportunity Accessibility Score (OAS), and General Accessibility Index
// (GAI) from the primitive network ratios defined in spec §4.8.
package scoring

// Ratios are the primitive ratios the NAS formula is built from.
type Ratios struct {
	CoverageRatio   float64
	ContinuityRatio float64
	QualityRatio    float64
	BlockerPressure float64
}

// Inputs bundles the raw network measurements needed to derive Ratios.
type Inputs struct {
	PassLengthM              float64
	LimitedLengthM           float64
	TotalLengthM             float64
	LargestPassComponentLenM float64
	BlockedEdgeCount         int
}

// ComputeRatios derives the four primitive ratios from raw network
// measurements (spec §4.8).
func ComputeRatios(in Inputs) Ratios {
	coverage := clamp01(safeDiv(in.PassLengthM, in.TotalLengthM))

	continuity := 0.0
	if in.PassLengthM != 0 {
		continuity = clamp01(safeDiv(in.LargestPassComponentLenM, in.PassLengthM))
	}

	quality := clamp01(safeDiv(in.PassLengthM+0.6*in.LimitedLengthM, in.TotalLengthM))

	totalLengthKm := in.TotalLengthM / 1000
	denom := totalLengthKm
	if denom < 0.5 {
		denom = 0.5
	}
	blockerPressure := clamp01(safeDiv(float64(in.BlockedEdgeCount), denom) / 3)

	return Ratios{
		CoverageRatio:   coverage,
		ContinuityRatio: continuity,
		QualityRatio:    quality,
		BlockerPressure: blockerPressure,
	}
}

// NAS computes the Network Accessibility Score from its primitive
// ratios (spec §4.8).
func NAS(r Ratios) float64 {
	return 100 * (0.35*r.CoverageRatio + 0.30*r.ContinuityRatio + 0.20*r.QualityRatio + 0.15*(1-r.BlockerPressure))
}

// OAS computes the Opportunity Accessibility Score: the share of
// snapped POIs reachable from the base component, or 50 if there are no
// snapped POIs at all (spec §4.8).
func OAS(reachablePOIs, totalPOIs int) float64 {
	if totalPOIs == 0 {
		return 50
	}
	return 100 * float64(reachablePOIs) / float64(totalPOIs)
}

// GAI computes the General Accessibility Index (spec §4.8, §6).
func GAI(nas, oas float64) float64 {
	return 0.70*nas + 0.30*oas
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
