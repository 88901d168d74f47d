package account

import (
	"math"
	"strings"

	"github.com/lib/pq"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/ideology"
	"ideomatch/backend/internal/models"
)

var (
	ErrInvalidGender   = apperr.E(apperr.BadRequest, "Unknown gender")
	ErrInvalidDistance = apperr.E(apperr.BadRequest, "Max distance must not be negative")
	ErrScoreRange      = apperr.E(apperr.BadRequest, "Scores must be between 0 and 100")
	ErrInvalidLocation = apperr.E(apperr.BadRequest, "Location is out of range")
)

// SettingsPatch updates the fields that are set.
type SettingsPatch struct {
	IsDarkMode            *bool            `json:"is_dark_mode"`
	Discoverable          *bool            `json:"discoverable"`
	ConsiderGender        *bool            `json:"consider_gender"`
	ConsiderPolitics      *bool            `json:"consider_politics"`
	ConsiderHobbies       *bool            `json:"consider_hobbies"`
	ReversedPoliticalView *bool            `json:"reversed_political_view"`
	PreferredGender       *[]models.Gender `json:"preferred_gender"`
	MaxDistance           *int             `json:"max_distance" example:"50"`
}

func (p *SettingsPatch) Validate() error {
	if p.PreferredGender != nil {
		for _, g := range *p.PreferredGender {
			if !g.Valid() {
				return ErrInvalidGender
			}
		}
	}
	if p.MaxDistance != nil && *p.MaxDistance < 0 {
		return ErrInvalidDistance
	}
	return nil
}

func (p *SettingsPatch) Apply(s *models.Settings) {
	setBool(&s.IsDarkMode, p.IsDarkMode)
	setBool(&s.Discoverable, p.Discoverable)
	setBool(&s.ConsiderGender, p.ConsiderGender)
	setBool(&s.ConsiderPolitics, p.ConsiderPolitics)
	setBool(&s.ConsiderHobbies, p.ConsiderHobbies)
	setBool(&s.ReversedPoliticalView, p.ReversedPoliticalView)
	if p.PreferredGender != nil {
		genders := make(pq.StringArray, len(*p.PreferredGender))
		for i, g := range *p.PreferredGender {
			genders[i] = string(g)
		}
		s.PreferredGender = genders
	}
	if p.MaxDistance != nil {
		s.MaxDistance = *p.MaxDistance
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// InterestsPatch updates the fields that are set. Scores range from 0 to 100.
type InterestsPatch struct {
	Civil      *float64  `json:"civil" example:"60"`
	Diplomatic *float64  `json:"diplomatic" example:"45"`
	Economic   *float64  `json:"economic" example:"30"`
	Society    *float64  `json:"society" example:"70"`
	Ideology   *string   `json:"ideology"`
	Hobbies    *[]string `json:"hobbies"`
}

func (p *InterestsPatch) Validate() error {
	for _, v := range []*float64{p.Civil, p.Diplomatic, p.Economic, p.Society} {
		if v != nil && (math.IsNaN(*v) || *v < 0 || *v > 100) {
			return ErrScoreRange
		}
	}
	return nil
}

// Apply writes the patch into in. When scores changed and no ideology was
// given explicitly, the ideology is derived from the four scores, or
// cleared if any of them is still missing.
func (p *InterestsPatch) Apply(in *models.Interests) error {
	scoresChanged := p.Civil != nil || p.Diplomatic != nil || p.Economic != nil || p.Society != nil
	setFloat(&in.Civil, p.Civil)
	setFloat(&in.Diplomatic, p.Diplomatic)
	setFloat(&in.Economic, p.Economic)
	setFloat(&in.Society, p.Society)
	if p.Hobbies != nil {
		hobbies := make(pq.StringArray, 0, len(*p.Hobbies))
		for _, h := range *p.Hobbies {
			if h = strings.TrimSpace(h); h != "" {
				hobbies = append(hobbies, h)
			}
		}
		in.Hobbies = hobbies
	}

	if p.Ideology != nil {
		in.Ideology = p.Ideology
		return nil
	}
	if !scoresChanged {
		return nil
	}
	scores, ok := in.Scores()
	if !ok {
		in.Ideology = nil
		return nil
	}
	name, err := ideology.Classify(scores[0], scores[1], scores[2], scores[3])
	if err != nil {
		return err
	}
	in.Ideology = &name
	return nil
}

func setFloat(dst **float64, v *float64) {
	if v != nil {
		x := *v
		*dst = &x
	}
}

func validLocation(p models.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
