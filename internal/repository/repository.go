// Package repository persists users, relationship edges and messages with
// gorm. Each method is a single query or one transaction.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/models"
)

var ErrUsernameTaken = apperr.E(apperr.Conflict, "Username is already taken")

// CandidateFilter is the cheap pre-filter applied in the store before the
// matcher evaluates its full predicate. Only discoverable users are returned.
type CandidateFilter struct {
	// Exclude lists users that must never be returned.
	Exclude []uuid.UUID
	// Genders, when non-empty, restricts candidates to these genders.
	Genders []models.Gender
	// AnyHobby, when non-empty, requires at least one shared hobby.
	AnyHobby []string
	// Switches, when set, requires candidates to use exactly these matching
	// switches.
	Switches *models.Switches
}

// Repository is the gorm backed store.
type Repository struct {
	db  *gorm.DB
	log zerolog.Logger
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db, log: logger.WithComponent("repository")}
}

func internal(op string, err error) error {
	return apperr.Wrap(apperr.Internal, op, err)
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", u.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUsernameTaken
		}
		return tx.Create(u).Error
	})
	if errors.Is(err, ErrUsernameTaken) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	if err != nil {
		return internal("create user", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Preload("Settings").Preload("Interests").First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, internal("get user", err)
	}
	return &u, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Preload("Settings").Preload("Interests").
		First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, internal("get user by username", err)
	}
	return &u, nil
}

// GetUsers returns the users with the given ids. Unknown ids are skipped.
func (r *Repository) GetUsers(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Preload("Interests").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, internal("get users", err)
	}
	return users, nil
}

// UpdateUser saves the user's own columns. Settings and interests are saved
// through their own methods.
func (r *Repository) UpdateUser(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Model(u).Select("username", "password_hash", "gender", "latitude", "longitude").
		Updates(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	if err != nil {
		return internal("update user", err)
	}
	return nil
}

func (r *Repository) SaveSettings(ctx context.Context, s *models.Settings) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return internal("save settings", err)
	}
	return nil
}

func (r *Repository) SaveInterests(ctx context.Context, i *models.Interests) error {
	if err := r.db.WithContext(ctx).Save(i).Error; err != nil {
		return internal("save interests", err)
	}
	return nil
}

// FindCandidates returns discoverable users passing f, with settings and
// interests loaded.
func (r *Repository) FindCandidates(ctx context.Context, f CandidateFilter) ([]models.User, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN settings ON settings.id = users.settings_id AND settings.deleted_at IS NULL").
		Joins("JOIN interests ON interests.id = users.interests_id AND interests.deleted_at IS NULL").
		Where("settings.discoverable = ?", true)
	if len(f.Exclude) > 0 {
		q = q.Where("users.id NOT IN ?", f.Exclude)
	}
	if len(f.Genders) > 0 {
		genders := make([]string, len(f.Genders))
		for i, g := range f.Genders {
			genders[i] = string(g)
		}
		q = q.Where("users.gender IN ?", genders)
	}
	if len(f.AnyHobby) > 0 {
		q = q.Where("interests.hobbies && ?", pq.Array(f.AnyHobby))
	}
	if sw := f.Switches; sw != nil {
		q = q.Where("settings.consider_gender = ? AND settings.consider_politics = ? AND "+
			"settings.reversed_political_view = ? AND settings.consider_hobbies = ?",
			sw.ConsiderGender, sw.ConsiderPolitics, sw.ReversedPoliticalView, sw.ConsiderHobbies)
	}

	var users []models.User
	if err := q.Preload("Settings").Preload("Interests").Find(&users).Error; err != nil {
		return nil, internal("find candidates", err)
	}
	r.log.Debug().Int("count", len(users)).Msg("candidates pre-filtered")
	return users, nil
}
