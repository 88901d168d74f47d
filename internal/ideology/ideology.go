// Package ideology maps the four political axis scores of a profile onto the
// nearest named ideology.
package ideology

import (
	"math"

	"ideomatch/backend/internal/apperr"
)

// Point is a named reference ideology. Coordinates use the 0..100 scale of
// the questionnaire: Econ pairs with the economic score, Dipl with
// diplomatic, Govt with civil and Scty with society.
type Point struct {
	Name string
	Econ float64
	Dipl float64
	Govt float64
	Scty float64
}

// ErrInvalidScore is returned for NaN or infinite scores.
var ErrInvalidScore = apperr.E(apperr.BadRequest, "Ideology scores must be finite numbers")

// Classify returns the name of the reference ideology closest to the given
// scores under L1 distance. Ties keep the earliest reference.
func Classify(civil, diplomatic, economic, society float64) (string, error) {
	for _, v := range [...]float64{civil, diplomatic, economic, society} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", ErrInvalidScore
		}
	}

	best := ""
	minDistance := math.Inf(1)
	for _, p := range references {
		d := math.Abs(p.Govt-civil) +
			math.Abs(p.Dipl-diplomatic) +
			math.Abs(p.Econ-economic) +
			math.Abs(p.Scty-society)
		if d < minDistance {
			minDistance = d
			best = p.Name
		}
	}
	return best, nil
}

// References returns a copy of the reference list in classification order.
func References() []Point {
	out := make([]Point, len(references))
	copy(out, references)
	return out
}
