package models

import (
	"time"

	"github.com/google/uuid"
)

// PublicUser is what other users may see of a profile.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Gender    *Gender   `json:"gender,omitempty"`
	Ideology  *string   `json:"ideology,omitempty"`
	Hobbies   []string  `json:"hobbies"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the public view of u.
func (u *User) Public() PublicUser {
	hobbies := []string{}
	hobbies = append(hobbies, u.Interests.Hobbies...)
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Gender:    u.Gender,
		Ideology:  u.Interests.Ideology,
		Hobbies:   hobbies,
		CreatedAt: u.CreatedAt,
	}
}
