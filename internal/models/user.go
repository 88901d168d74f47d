package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered member. Relations to other users live in the edge
// tables (contacts, matches, blocks), never as nested user slices.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"size:255;unique;not null"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Gender       *Gender   `gorm:"size:50;index"`

	// Geolocation in degrees; both nil when the user never shared a location.
	Latitude  *float64
	Longitude *float64

	SettingsID  uint      `gorm:"not null"`
	Settings    Settings  `gorm:"foreignKey:SettingsID;constraint:OnDelete:CASCADE;"`
	InterestsID uint      `gorm:"not null"`
	Interests   Interests `gorm:"foreignKey:InterestsID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a random UUID when the caller did not pick one.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat" example:"52.52"`
	Lon float64 `json:"lon" example:"13.405"`
}

// Location returns the user's position and whether one is set.
func (u *User) Location() (Point, bool) {
	if u.Latitude == nil || u.Longitude == nil {
		return Point{}, false
	}
	return Point{Lat: *u.Latitude, Lon: *u.Longitude}, true
}

// SetLocation stores p on the user.
func (u *User) SetLocation(p Point) {
	lat, lon := p.Lat, p.Lon
	u.Latitude = &lat
	u.Longitude = &lon
}
