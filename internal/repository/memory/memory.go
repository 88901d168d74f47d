// Package memory is an in-process implementation of the repository used by
// tests and by STORAGE=memory deployments.
package memory

import (
	"bytes"
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/changefeed"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository"
)

// Store keeps everything in maps guarded by one RWMutex. Message writes are
// published to the change feed after the lock is released.
type Store struct {
	mu sync.RWMutex

	users     map[uuid.UUID]*models.User
	contacts  map[uuid.UUID]graph.Set
	matches   map[uuid.UUID]graph.Set
	blocks    map[uuid.UUID]graph.Set
	messages  []models.Message
	nextMsgID uint
	nextRowID uint

	pub changefeed.Publisher
}

// New returns an empty store. pub may be nil.
func New(pub changefeed.Publisher) *Store {
	return &Store{
		users:    make(map[uuid.UUID]*models.User),
		contacts: make(map[uuid.UUID]graph.Set),
		matches:  make(map[uuid.UUID]graph.Set),
		blocks:   make(map[uuid.UUID]graph.Set),
		pub:      pub,
	}
}

func cloneStrings(a pq.StringArray) pq.StringArray {
	if a == nil {
		return nil
	}
	return slices.Clone(a)
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Settings.PreferredGender = cloneStrings(u.Settings.PreferredGender)
	c.Interests.Hobbies = cloneStrings(u.Interests.Hobbies)
	return &c
}

func (s *Store) usernameTaken(name string, except uuid.UUID) bool {
	for id, u := range s.users {
		if id != except && u.Username == name {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTaken(u.Username, uuid.Nil) {
		return repository.ErrUsernameTaken
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.nextRowID++
	u.Settings.ID, u.SettingsID = s.nextRowID, s.nextRowID
	u.Settings.CreatedAt, u.Settings.UpdatedAt = now, now
	s.nextRowID++
	u.Interests.ID, u.InterestsID = s.nextRowID, s.nextRowID
	u.Interests.CreatedAt, u.Interests.UpdatedAt = now, now

	s.users[u.ID] = cloneUser(u)
	s.contacts[u.ID] = graph.Set{}
	s.matches[u.ID] = graph.Set{}
	s.blocks[u.ID] = graph.Set{}
	return nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (s *Store) GetUsers(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[u.ID]
	if !ok {
		return apperr.ErrUserNotFound
	}
	if s.usernameTaken(u.Username, u.ID) {
		return repository.ErrUsernameTaken
	}
	cur.Username = u.Username
	cur.PasswordHash = u.PasswordHash
	cur.Gender = u.Gender
	cur.Latitude, cur.Longitude = u.Latitude, u.Longitude
	cur.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SaveSettings(_ context.Context, st *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.SettingsID == st.ID {
			st.UpdatedAt = time.Now()
			u.Settings = *st
			u.Settings.PreferredGender = cloneStrings(st.PreferredGender)
			return nil
		}
	}
	return apperr.E(apperr.NotFound, "Settings not found")
}

func (s *Store) SaveInterests(_ context.Context, in *models.Interests) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.InterestsID == in.ID {
			in.UpdatedAt = time.Now()
			u.Interests = *in
			u.Interests.Hobbies = cloneStrings(in.Hobbies)
			return nil
		}
	}
	return apperr.E(apperr.NotFound, "Interests not found")
}

// FindCandidates applies the same pre-filter as the gorm store. Results are
// ordered by username.
func (s *Store) FindCandidates(_ context.Context, f repository.CandidateFilter) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := graph.NewSet(f.Exclude...)
	var out []models.User
	for id, u := range s.users {
		if !u.Settings.Discoverable || excluded.Has(id) {
			continue
		}
		if len(f.Genders) > 0 && (u.Gender == nil || !slices.Contains(f.Genders, *u.Gender)) {
			continue
		}
		if len(f.AnyHobby) > 0 && !overlaps(u.Interests.Hobbies, f.AnyHobby) {
			continue
		}
		if f.Switches != nil && u.Settings.MatchingSwitches() != *f.Switches {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func overlaps(a []string, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
}
