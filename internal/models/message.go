package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a chat line between two users. Topics are system-picked
// conversation starters stored as regular messages with IsTopic set.
type Message struct {
	gorm.Model
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_pair"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_pair"`
	Text       string
	Time       time.Time `gorm:"not null;index"`
	IsTopic    bool      `gorm:"not null;default:false"`

	Sender   User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE;"`
	Receiver User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE;"`
}

// Involves reports whether the message was exchanged between a and b, in
// either direction.
func (m *Message) Involves(a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Party is the part of a user shown next to a message.
type Party struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// MessageView is a message as delivered to clients.
type MessageView struct {
	ID       uint      `json:"id"`
	Sender   Party     `json:"sender"`
	Receiver Party     `json:"receiver"`
	Text     string    `json:"text"`
	Time     time.Time `json:"time"`
	IsTopic  bool      `json:"is_topic"`
}

// View strips the message down to what clients may see. Sender and
// receiver are reduced to id and username.
func (m *Message) View() MessageView {
	return MessageView{
		ID:       m.ID,
		Sender:   Party{ID: m.SenderID, Username: m.Sender.Username},
		Receiver: Party{ID: m.ReceiverID, Username: m.Receiver.Username},
		Text:     m.Text,
		Time:     m.Time,
		IsTopic:  m.IsTopic,
	}
}
