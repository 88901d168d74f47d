// Package account registers users, signs them in and manages their profile,
// settings and interests.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = apperr.E(apperr.BadRequest, "Invalid credentials")
	ErrUsernameRequired   = apperr.E(apperr.BadRequest, "Username is required")
	ErrPasswordTooShort   = apperr.E(apperr.BadRequest, "Password must be at least 8 characters")
	ErrPasswordTooLong    = apperr.E(apperr.BadRequest, "Password must be at most 72 bytes")
	ErrBlockedProfile     = apperr.E(apperr.BadRequest, "You cannot view this profile")
)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and rejects anything longer.
	maxPasswordLength = 72
)

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func (s *Service) hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "hash password", err)
	}
	return string(hash), nil
}

// Store persists accounts.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	SaveSettings(ctx context.Context, s *models.Settings) error
	SaveInterests(ctx context.Context, i *models.Interests) error
}

// Blocks answers whether two users blocked each other.
type Blocks interface {
	IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// TokenConfig signs issued tokens.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type Service struct {
	store  Store
	blocks Blocks
	tokens TokenConfig
	cost   int
	log    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func New(store Store, blocks Blocks, tokens TokenConfig, opts ...Option) *Service {
	s := &Service{
		store:  store,
		blocks: blocks,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		log:    logger.WithComponent("account"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest creates an account. Settings and interests are optional
// and fall back to the defaults.
type RegisterRequest struct {
	Username  string          `json:"username" binding:"required" example:"alice"`
	Password  string          `json:"password" binding:"required" example:"password123"`
	Gender    *models.Gender  `json:"gender" example:"FEMALE"`
	Location  *models.Point   `json:"location"`
	Settings  *SettingsPatch  `json:"settings"`
	Interests *InterestsPatch `json:"interests"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrUsernameRequired
	}
	if err := validatePassword(r.Password); err != nil {
		return err
	}
	if r.Gender != nil && !r.Gender.Valid() {
		return ErrInvalidGender
	}
	if r.Location != nil && !validLocation(*r.Location) {
		return ErrInvalidLocation
	}
	if r.Settings != nil {
		if err := r.Settings.Validate(); err != nil {
			return err
		}
	}
	if r.Interests != nil {
		if err := r.Interests.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Register creates the user and returns a token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return "", err
	}

	u := &models.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Gender:       req.Gender,
		Settings:     models.DefaultSettings(),
	}
	if req.Location != nil {
		u.SetLocation(*req.Location)
	}
	if req.Settings != nil {
		req.Settings.Apply(&u.Settings)
	}
	if req.Interests != nil {
		if err := req.Interests.Apply(&u.Interests); err != nil {
			return "", err
		}
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return "", err
	}
	s.log.Info().Str("user", u.ID.String()).Msg("user registered")
	return s.issue(u)
}

// LoginRequest holds credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// Login checks the credentials and returns a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, apperr.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issue(u)
}

// Refresh issues a new token for an already authenticated user.
func (s *Service) Refresh(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.issue(u)
}

func (s *Service) issue(u *models.User) (string, error) {
	token, err := jwt.GenerateToken(u.ID, u.Username, s.tokens.Secret, s.tokens.TTL)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "sign token", err)
	}
	return token, nil
}
