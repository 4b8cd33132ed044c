package candidates

import (
	"sort"

	"github.com/accessmap/aae/pkg/models"
)

// MaxRanked caps the number of candidates the engine returns (spec §4.11).
const MaxRanked = 240

// GroupAndRank deduplicates candidates that would reconnect the same
// pair of components down to the single best-scoring one per group,
// then returns them sorted by descending score (ties broken by
// descending unlock distance, then by first-seen order for full
// determinism), truncated to maxRanked (the host's configured
// MaxRankedCandidates, or MaxRanked if unset).
func GroupAndRank(cands []models.Candidate, maxRanked int) []models.Candidate {
	best := make(map[models.GroupKey]int, len(cands))
	order := make([]models.GroupKey, 0, len(cands))

	for i, c := range cands {
		if existing, ok := best[c.GroupKey]; ok {
			if c.Score > cands[existing].Score {
				best[c.GroupKey] = i
			}
			continue
		}
		best[c.GroupKey] = i
		order = append(order, c.GroupKey)
	}

	out := make([]models.Candidate, 0, len(order))
	for _, k := range order {
		out = append(out, cands[best[k]])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UnlockM > out[j].UnlockM
	})

	if len(out) > maxRanked {
		out = out[:maxRanked]
	}
	return out
}
