package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/models"
)

// LoadEdges implements graph.Store.
func (r *Repository) LoadEdges(ctx context.Context, id uuid.UUID) (*graph.Edges, error) {
	db := r.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return nil, internal("load edges", err)
	}
	if n == 0 {
		return nil, apperr.ErrUserNotFound
	}

	var contacts, matches, blocks, blockedBy []uuid.UUID
	if err := db.Model(&models.Contact{}).Where("user_id = ?", id).Pluck("contact_id", &contacts).Error; err != nil {
		return nil, internal("load contacts", err)
	}
	if err := db.Model(&models.Match{}).Where("user_id = ?", id).Pluck("match_id", &matches).Error; err != nil {
		return nil, internal("load matches", err)
	}
	if err := db.Model(&models.Block{}).Where("user_id = ?", id).Pluck("blocked_id", &blocks).Error; err != nil {
		return nil, internal("load blocks", err)
	}
	if err := db.Model(&models.Block{}).Where("blocked_id = ?", id).Pluck("user_id", &blockedBy).Error; err != nil {
		return nil, internal("load blocked by", err)
	}

	e := graph.NewEdges(id)
	e.Contacts = graph.NewSet(contacts...)
	e.Matches = graph.NewSet(matches...)
	e.Blocks = graph.NewSet(blocks...)
	e.BlockedBy = graph.NewSet(blockedBy...)
	return e, nil
}

func pairBlocked(tx *gorm.DB, a, b uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&models.Block{}).
		Where("(user_id = ? AND blocked_id = ?) OR (user_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&n).Error
	return n > 0, err
}

// InsertContactPair implements graph.Store.
func (r *Repository) InsertContactPair(ctx context.Context, a, b uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocked, err := pairBlocked(tx, a, b)
		if err != nil {
			return err
		}
		if blocked {
			return graph.ErrPairBlocked
		}
		var n int64
		if err := tx.Model(&models.Match{}).
			Where("(user_id = ? AND match_id = ?) OR (user_id = ? AND match_id = ?)", a, b, b, a).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return graph.ErrRelationExists
		}
		rows := []models.Contact{{UserID: a, ContactID: b}, {UserID: b, ContactID: a}}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
	return graphErr("insert contact pair", err)
}

// InsertMatch implements graph.Store.
func (r *Repository) InsertMatch(ctx context.Context, from, to uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocked, err := pairBlocked(tx, from, to)
		if err != nil {
			return err
		}
		if blocked {
			return graph.ErrPairBlocked
		}
		res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Match{UserID: from, MatchID: to})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return graph.ErrRelationExists
		}
		return nil
	})
	return graphErr("insert match", err)
}

// BlockPair implements graph.Store.
func (r *Repository) BlockPair(ctx context.Context, a, b uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("(user_id = ? AND contact_id = ?) OR (user_id = ? AND contact_id = ?)", a, b, b, a).
			Delete(&models.Contact{}).Error; err != nil {
			return err
		}
		if err := tx.Where("(user_id = ? AND match_id = ?) OR (user_id = ? AND match_id = ?)", a, b, b, a).
			Delete(&models.Match{}).Error; err != nil {
			return err
		}
		rows := []models.Block{{UserID: a, BlockedID: b}, {UserID: b, BlockedID: a}}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
	return graphErr("block pair", err)
}

// graphErr passes classified errors through and wraps the rest as Internal.
func graphErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return internal(op, err)
}
