package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is one direction of the symmetric contact relation. The graph
// always writes both directions together.
// The primary key is a composite of (UserID, ContactID) to ensure uniqueness.
type Contact struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContactID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time

	User    User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Contact User `gorm:"foreignKey:ContactID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Match is a directional interest edge from UserID to MatchID. A match is
// mutual once the reverse edge exists too.
type Match struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	MatchID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time

	User  User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Match User `gorm:"foreignKey:MatchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Block records that UserID blocked or declined BlockedID.
type Block struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BlockedID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time

	User    User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Blocked User `gorm:"foreignKey:BlockedID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
