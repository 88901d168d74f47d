package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Interests holds the four political axis scores, the ideology derived from
// them and the user's hobbies.
type Interests struct {
	gorm.Model
	Civil      *float64
	Diplomatic *float64
	Economic   *float64
	Society    *float64
	Ideology   *string `gorm:"size:100"`

	Hobbies pq.StringArray `gorm:"type:text[]"`
}

// Scores returns the four axis values in civil, diplomatic, economic, society
// order. ok is false unless all four are set.
func (i *Interests) Scores() (scores [4]float64, ok bool) {
	if i.Civil == nil || i.Diplomatic == nil || i.Economic == nil || i.Society == nil {
		return scores, false
	}
	return [4]float64{*i.Civil, *i.Diplomatic, *i.Economic, *i.Society}, true
}
