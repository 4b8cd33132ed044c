package candidates

import (
	"fmt"

	"github.com/accessmap/aae/internal/geo"
	"github.com/accessmap/aae/internal/spatial"
	"github.com/accessmap/aae/pkg/models"
)

// ReportBonusRadiusM is the radius used to look for corroborating
// community reports near a non-synthetic candidate (spec §4.10).
const ReportBonusRadiusM = 70

// maxReportBonus caps the score boost a cluster of nearby reports can
// contribute, so a single hotspot can't dominate the ranking.
const maxReportBonus = 2.0

// ApplyReportBonus boosts each edge-derived candidate's score and
// confidence when real community reports corroborate it within
// radiusM (the host's configured ReportBonusRadiusM, or
// ReportBonusRadiusM if unset). Synthetic (report-only) candidates
// already carry their own report signal and are left untouched.
func ApplyReportBonus(cands []models.Candidate, reports []models.AggregatedReport, reportIndex *spatial.Index, radiusM float64) []models.Candidate {
	for i := range cands {
		c := &cands[i]
		if c.Synthetic {
			continue
		}

		total := 0
		strongest := models.ConfidenceLow
		found := false
		for _, ri := range reportIndex.QueryRadius(c.Lon, c.Lat, radiusM, geo.DegreesForMeters) {
			r := reports[ri]
			if !r.HasCoordinates {
				continue
			}
			d := geo.Haversine(c.Lon, c.Lat, r.Lon, r.Lat)
			if d > radiusM {
				continue
			}
			total += r.EffectiveReports
			if !found || r.Confidence.Rank() > strongest.Rank() {
				strongest = r.Confidence
				found = true
			}
		}
		if total == 0 {
			continue
		}

		bonus := float64(total) * 0.4
		if bonus > maxReportBonus {
			bonus = maxReportBonus
		}
		c.ConfidenceBonus += bonus
		c.Score += bonus
		c.ReportSignalCount = total
		if found && strongest.Rank() > c.Confidence.Rank() {
			c.Confidence = strongest
		}
		c.Signals = append(c.Signals, fmt.Sprintf("Corroborated by %d nearby community reports", total))
	}
	return cands
}
