package matching

import (
	"math"

	"rishta/internal/domain"
)

// CandidateProfile is an immutable snapshot of the profile fields the engine
// consumes. Built per request from store rows; never mutated here.
type CandidateProfile struct {
	ID            uint
	UserID        uint
	DisplayName   string
	Gender        string
	Age           int
	Religion      string
	Caste         string
	Education     string
	MotherTongue  string
	State         string
	City          string
	Latitude      *float64
	Longitude     *float64
	PhotoURL      string
	Status        string
	AccountStatus string
}

// Factor weights. The final score is normalized against the sum of these, so
// adding or removing a factor keeps the 0-100 range intact.
const (
	weightReligion     = 25
	weightCaste        = 15
	weightEducation    = 20
	weightAge          = 20
	weightLocation     = 10
	weightMotherTongue = 10
)

// Score computes the compatibility of two profiles as an integer in [0,100].
// Pure and deterministic; a field missing on either side contributes nothing.
// All pairwise comparisons use absolute differences, so Score(a,b) == Score(b,a).
func Score(a, b CandidateProfile) int {
	totalWeight := weightReligion + weightCaste + weightEducation + weightAge +
		weightLocation + weightMotherTongue
	earned := religionPoints(a, b) + castePoints(a, b) + educationPoints(a, b) +
		agePoints(a, b) + locationPoints(a, b) + motherTonguePoints(a, b)
	return int(math.Round(100 * float64(earned) / float64(totalWeight)))
}

func religionPoints(a, b CandidateProfile) int {
	if a.Religion != "" && a.Religion == b.Religion {
		return weightReligion
	}
	return 0
}

func castePoints(a, b CandidateProfile) int {
	if a.Caste != "" && a.Caste == b.Caste {
		return weightCaste
	}
	return 0
}

// educationPoints scores proximity on the fixed ordinal scale. Values outside the
// scale rank as -1, which inflates the gap against on-scale values; two off-scale
// values compare as equal. Kept as-is to match production scoring.
func educationPoints(a, b CandidateProfile) int {
	if a.Education == "" || b.Education == "" {
		return 0
	}
	diff := domain.EducationRank(a.Education) - domain.EducationRank(b.Education)
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return weightEducation
	case 1:
		return 15
	case 2:
		return 10
	}
	return 0
}

func agePoints(a, b CandidateProfile) int {
	if a.Age <= 0 || b.Age <= 0 {
		return 0
	}
	diff := a.Age - b.Age
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 2:
		return weightAge
	case diff <= 5:
		return 15
	case diff <= 8:
		return 10
	case diff <= 12:
		return 5
	}
	return 0
}

func locationPoints(a, b CandidateProfile) int {
	if a.State == "" || a.State != b.State {
		return 0
	}
	if a.City != "" && a.City == b.City {
		return weightLocation
	}
	return 5
}

func motherTonguePoints(a, b CandidateProfile) int {
	if a.MotherTongue != "" && a.MotherTongue == b.MotherTongue {
		return weightMotherTongue
	}
	return 0
}
