package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"ideomatch/backend/internal/models"
)

// SettingsView is the client shape of models.Settings.
type SettingsView struct {
	IsDarkMode            bool     `json:"is_dark_mode"`
	Discoverable          bool     `json:"discoverable"`
	ConsiderGender        bool     `json:"consider_gender"`
	ConsiderPolitics      bool     `json:"consider_politics"`
	ConsiderHobbies       bool     `json:"consider_hobbies"`
	ReversedPoliticalView bool     `json:"reversed_political_view"`
	PreferredGender       []string `json:"preferred_gender"`
	MaxDistance           int      `json:"max_distance"`
}

func settingsView(s *models.Settings) SettingsView {
	return SettingsView{
		IsDarkMode:            s.IsDarkMode,
		Discoverable:          s.Discoverable,
		ConsiderGender:        s.ConsiderGender,
		ConsiderPolitics:      s.ConsiderPolitics,
		ConsiderHobbies:       s.ConsiderHobbies,
		ReversedPoliticalView: s.ReversedPoliticalView,
		PreferredGender:       append([]string{}, s.PreferredGender...),
		MaxDistance:           s.MaxDistance,
	}
}

// InterestsView is the client shape of models.Interests.
type InterestsView struct {
	Civil      *float64 `json:"civil"`
	Diplomatic *float64 `json:"diplomatic"`
	Economic   *float64 `json:"economic"`
	Society    *float64 `json:"society"`
	Ideology   *string  `json:"ideology"`
	Hobbies    []string `json:"hobbies"`
}

func interestsView(i *models.Interests) InterestsView {
	return InterestsView{
		Civil:      i.Civil,
		Diplomatic: i.Diplomatic,
		Economic:   i.Economic,
		Society:    i.Society,
		Ideology:   i.Ideology,
		Hobbies:    append([]string{}, i.Hobbies...),
	}
}

// Profile is the authenticated user's own view of their account.
type Profile struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	Gender    *models.Gender `json:"gender,omitempty"`
	Location  *models.Point  `json:"location,omitempty"`
	Settings  SettingsView   `json:"settings"`
	Interests InterestsView  `json:"interests"`
	CreatedAt time.Time      `json:"created_at"`
}

func profileOf(u *models.User) *Profile {
	p := &Profile{
		ID:        u.ID,
		Username:  u.Username,
		Gender:    u.Gender,
		Settings:  settingsView(&u.Settings),
		Interests: interestsView(&u.Interests),
		CreatedAt: u.CreatedAt,
	}
	if loc, ok := u.Location(); ok {
		p.Location = &loc
	}
	return p
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileOf(u), nil
}

// PublicProfile returns target as seen by viewer. Blocked pairs cannot see
// each other.
func (s *Service) PublicProfile(ctx context.Context, viewer, target uuid.UUID) (*models.PublicUser, error) {
	u, err := s.store.GetUser(ctx, target)
	if err != nil {
		return nil, err
	}
	if viewer != target {
		blocked, err := s.blocks.IsBlocked(ctx, viewer, target)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrBlockedProfile
		}
	}
	p := u.Public()
	return &p, nil
}

// UpdateRequest changes the fields that are set.
type UpdateRequest struct {
	Username *string        `json:"username" example:"alice"`
	Password *string        `json:"password"`
	Gender   *models.Gender `json:"gender" example:"FEMALE"`
	Location *models.Point  `json:"location"`
}

func (r *UpdateRequest) Validate() error {
	if r.Username != nil && strings.TrimSpace(*r.Username) == "" {
		return ErrUsernameRequired
	}
	if r.Password != nil {
		if err := validatePassword(*r.Password); err != nil {
			return err
		}
	}
	if r.Gender != nil && !r.Gender.Valid() {
		return ErrInvalidGender
	}
	if r.Location != nil && !validLocation(*r.Location) {
		return ErrInvalidLocation
	}
	return nil
}

func (s *Service) Update(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if req.Gender != nil {
		u.Gender = req.Gender
	}
	if req.Location != nil {
		u.SetLocation(*req.Location)
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return profileOf(u), nil
}

func (s *Service) Settings(ctx context.Context, userID uuid.UUID) (*SettingsView, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := settingsView(&u.Settings)
	return &v, nil
}

func (s *Service) UpdateSettings(ctx context.Context, userID uuid.UUID, patch SettingsPatch) (*SettingsView, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	patch.Apply(&u.Settings)
	if err := s.store.SaveSettings(ctx, &u.Settings); err != nil {
		return nil, err
	}
	v := settingsView(&u.Settings)
	return &v, nil
}

func (s *Service) Interests(ctx context.Context, userID uuid.UUID) (*InterestsView, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := interestsView(&u.Interests)
	return &v, nil
}

func (s *Service) UpdateInterests(ctx context.Context, userID uuid.UUID, patch InterestsPatch) (*InterestsView, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(&u.Interests); err != nil {
		return nil, err
	}
	if err := s.store.SaveInterests(ctx, &u.Interests); err != nil {
		return nil, err
	}
	v := interestsView(&u.Interests)
	return &v, nil
}
