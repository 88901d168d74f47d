package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ideomatch/backend/internal/models"
)

func pair(db *gorm.DB, a, b uuid.UUID) *gorm.DB {
	return db.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
}

func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Sender").Preload("Receiver")
}

func (r *Repository) CreateMessage(ctx context.Context, m *models.Message) error {
	if err := r.db.WithContext(ctx).Omit("Sender", "Receiver").Create(m).Error; err != nil {
		return internal("create message", err)
	}
	return nil
}

// LatestMessages returns up to limit messages between a and b, newest first.
func (r *Repository) LatestMessages(ctx context.Context, a, b uuid.UUID, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := withParties(pair(r.db.WithContext(ctx), a, b)).
		Order("time DESC").Order("id DESC").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, internal("latest messages", err)
	}
	return msgs, nil
}

// MessagesAfter returns the messages between a and b with an id above
// afterID, oldest first.
func (r *Repository) MessagesAfter(ctx context.Context, a, b uuid.UUID, afterID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := withParties(pair(r.db.WithContext(ctx), a, b)).Where("id > ?", afterID).
		Order("time ASC").Order("id ASC").Find(&msgs).Error
	if err != nil {
		return nil, internal("messages after", err)
	}
	return msgs, nil
}

// LastMessage returns the newest message between a and b, or nil.
func (r *Repository) LastMessage(ctx context.Context, a, b uuid.UUID) (*models.Message, error) {
	msgs, err := r.LatestMessages(ctx, a, b, 1)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

// CountMessages counts messages between a and b in both directions.
func (r *Repository) CountMessages(ctx context.Context, a, b uuid.UUID) (int64, error) {
	var n int64
	if err := pair(r.db.WithContext(ctx).Model(&models.Message{}), a, b).Count(&n).Error; err != nil {
		return 0, internal("count messages", err)
	}
	return n, nil
}

// MessagePage returns one page of the conversation between a and b, newest
// first.
func (r *Repository) MessagePage(ctx context.Context, a, b uuid.UUID, page, limit int) (*Page[models.Message], error) {
	q := pair(r.db.WithContext(ctx), a, b).Order("time DESC").Order("id DESC")
	p, err := Paginate[models.Message](q, page, limit, withParties)
	if err != nil {
		return nil, internal("message page", err)
	}
	return p, nil
}
