package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Settings holds a user's discovery preferences.
type Settings struct {
	gorm.Model
	IsDarkMode            bool `gorm:"not null;default:false"`
	Discoverable          bool `gorm:"not null;default:false;index"`
	ConsiderGender        bool `gorm:"not null"`
	ConsiderPolitics      bool `gorm:"not null"`
	ConsiderHobbies       bool `gorm:"not null"`
	ReversedPoliticalView bool `gorm:"not null;default:false"`

	PreferredGender pq.StringArray `gorm:"type:text[]"`

	// MaxDistance is a radius in kilometres; 0 means unlimited.
	MaxDistance int `gorm:"not null;default:0"`
}

// DefaultSettings returns the settings a freshly registered user starts with.
func DefaultSettings() Settings {
	return Settings{
		ConsiderGender:   true,
		ConsiderPolitics: true,
		ConsiderHobbies:  true,
		PreferredGender:  pq.StringArray{},
	}
}

// Switches are the on/off matching preferences of a user.
type Switches struct {
	ConsiderGender        bool
	ConsiderPolitics      bool
	ReversedPoliticalView bool
	ConsiderHobbies       bool
}

// MatchingSwitches returns the switches two users must share to be matched.
func (s *Settings) MatchingSwitches() Switches {
	return Switches{
		ConsiderGender:        s.ConsiderGender,
		ConsiderPolitics:      s.ConsiderPolitics,
		ReversedPoliticalView: s.ReversedPoliticalView,
		ConsiderHobbies:       s.ConsiderHobbies,
	}
}

// Prefers reports whether g is in the preferred gender set.
func (s *Settings) Prefers(g Gender) bool {
	for _, p := range s.PreferredGender {
		if Gender(p) == g {
			return true
		}
	}
	return false
}
