package matching

import (
	"sort"

	"rishta/internal/domain"
	"rishta/pkg/location"
)

// RankedCandidate pairs a candidate with its score and, when both sides have
// coordinates, the great-circle distance in whole kilometers.
type RankedCandidate struct {
	Profile    CandidateProfile `json:"profile"`
	Score      int              `json:"score"`
	DistanceKm *int             `json:"distance_km,omitempty"`
}

// Rank scores candidates against the requester and orders them best-first.
//
// The requester's own profile, same-gender candidates, and candidates that are not
// approved or not on an active account are excluded. Opposite-gender-only matching
// is a hard business rule. Ordering is score descending, ties broken by distance
// ascending when both candidates have one; otherwise the prior relative order is
// preserved. limit <= 0 means no truncation.
func Rank(requester CandidateProfile, candidates []CandidateProfile, limit int) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.UserID == requester.UserID {
			continue
		}
		if c.Gender == requester.Gender {
			continue
		}
		if c.Status != domain.ProfileStatusApproved {
			continue
		}
		if c.AccountStatus != "" && c.AccountStatus != domain.AccountStatusActive {
			continue
		}
		rc := RankedCandidate{Profile: c, Score: Score(requester, c)}
		if requester.Latitude != nil && requester.Longitude != nil &&
			c.Latitude != nil && c.Longitude != nil {
			d := location.HaversineKmRounded(*requester.Latitude, *requester.Longitude, *c.Latitude, *c.Longitude)
			rc.DistanceKm = &d
		}
		ranked = append(ranked, rc)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].DistanceKm != nil && ranked[j].DistanceKm != nil {
			return *ranked[i].DistanceKm < *ranked[j].DistanceKm
		}
		return false
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
