package matcher

import (
	"ideomatch/backend/internal/models"
)

// PoliticalBand is the per-axis sensitivity of political matching.
const PoliticalBand = 10.0

// Eligible reports whether candidate may be proposed to requester. It does
// not look at the relationship graph; exclusions are applied separately.
// Both users must use the same matching switches, so a candidate who filters
// on politics or hobbies is only offered to requesters filtering the same way.
func Eligible(requester, candidate *models.User) bool {
	return requester.Settings.MatchingSwitches() == candidate.Settings.MatchingSwitches() &&
		genderOK(requester, candidate) &&
		genderOK(candidate, requester) &&
		politicsOK(requester, candidate) &&
		distanceOK(requester, candidate) &&
		hobbiesOK(requester, candidate)
}

// genderOK applies from's gender preference to to.
func genderOK(from, to *models.User) bool {
	if !from.Settings.ConsiderGender {
		return true
	}
	return to.Gender != nil && from.Settings.Prefers(*to.Gender)
}

func politicsOK(requester, candidate *models.User) bool {
	if !requester.Settings.ConsiderPolitics {
		return true
	}
	mine, ok := requester.Interests.Scores()
	if !ok {
		return false
	}
	theirs, ok := candidate.Interests.Scores()
	if !ok {
		return false
	}

	within := 0
	for i := range mine {
		if theirs[i] >= mine[i]-PoliticalBand && theirs[i] <= mine[i]+PoliticalBand {
			within++
		}
	}
	if requester.Settings.ReversedPoliticalView {
		return within == 0
	}
	return within == len(mine)
}

func distanceOK(requester, candidate *models.User) bool {
	limit := effectiveLimit(requester.Settings.MaxDistance, candidate.Settings.MaxDistance)
	if limit == 0 {
		return true
	}
	p, ok := requester.Location()
	if !ok {
		return false
	}
	q, ok := candidate.Location()
	if !ok {
		return false
	}
	return DistanceKm(p, q) <= float64(limit)
}

// effectiveLimit is 0 when both are unlimited, the nonzero one when only one
// is set, and the smaller one otherwise.
func effectiveLimit(r, t int) int {
	switch {
	case r <= 0 && t <= 0:
		return 0
	case r <= 0:
		return t
	case t <= 0:
		return r
	case r < t:
		return r
	default:
		return t
	}
}

func hobbiesOK(requester, candidate *models.User) bool {
	if !requester.Settings.ConsiderHobbies {
		return true
	}
	mine := make(map[string]struct{}, len(requester.Interests.Hobbies))
	for _, h := range requester.Interests.Hobbies {
		mine[h] = struct{}{}
	}
	for _, h := range candidate.Interests.Hobbies {
		if _, ok := mine[h]; ok {
			return true
		}
	}
	return false
}
