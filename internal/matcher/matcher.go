// Package matcher finds new contacts for a user among the discoverable users
// whose preferences are compatible with theirs.
package matcher

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/metrics"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository"
)

var (
	ErrNotDiscoverable = apperr.E(apperr.BadRequest, "You are not discoverable")
	ErrNoCandidates    = apperr.E(apperr.BadRequest, "No new contacts found")
)

// Users loads users and pre-filters candidates.
type Users interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindCandidates(ctx context.Context, f repository.CandidateFilter) ([]models.User, error)
}

// Relations is the part of the relationship graph the matcher needs.
type Relations interface {
	ExcludedCandidates(ctx context.Context, u uuid.UUID) (graph.Set, error)
	AddContact(ctx context.Context, a, b uuid.UUID) error
}

// TopicGenerator opens a conversation between two new contacts.
type TopicGenerator interface {
	Generate(ctx context.Context, from, to uuid.UUID) (*models.Message, error)
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithRand makes candidate picks come from r.
func WithRand(r *rand.Rand) Option {
	return func(m *Matcher) { m.pick = r.IntN }
}

// WithTopics enables topic generation for new contacts.
func WithTopics(t TopicGenerator, timeout time.Duration) Option {
	return func(m *Matcher) {
		m.topics = t
		if timeout > 0 {
			m.topicTimeout = timeout
		}
	}
}

type Matcher struct {
	users  Users
	rel    Relations
	topics TopicGenerator

	pick         func(n int) int
	topicTimeout time.Duration
	inflight     sync.WaitGroup
	log          zerolog.Logger
}

func New(users Users, rel Relations, opts ...Option) *Matcher {
	m := &Matcher{
		users:        users,
		rel:          rel,
		pick:         rand.IntN,
		topicTimeout: 5 * time.Second,
		log:          logger.WithComponent("matcher"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindNewContact picks one eligible stranger at random and makes them a
// contact of requesterID. The returned view carries no private fields.
func (m *Matcher) FindNewContact(ctx context.Context, requesterID uuid.UUID) (*models.PublicUser, error) {
	contact, err := m.findNewContact(ctx, requesterID)
	switch {
	case err == nil:
		metrics.ContactsFoundTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrNoCandidates):
		metrics.ContactsFoundTotal.WithLabelValues("none").Inc()
	default:
		metrics.ContactsFoundTotal.WithLabelValues("error").Inc()
	}
	return contact, err
}

func (m *Matcher) findNewContact(ctx context.Context, requesterID uuid.UUID) (*models.PublicUser, error) {
	requester, err := m.users.GetUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requester.Settings.Discoverable {
		return nil, ErrNotDiscoverable
	}

	excluded, err := m.rel.ExcludedCandidates(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	filter, ok := prefilter(requester, excluded)
	if !ok {
		return nil, ErrNoCandidates
	}
	pool, err := m.users.FindCandidates(ctx, filter)
	if err != nil {
		return nil, err
	}

	eligible := make([]*models.User, 0, len(pool))
	for i := range pool {
		c := &pool[i]
		if excluded.Has(c.ID) || !Eligible(requester, c) {
			continue
		}
		eligible = append(eligible, c)
	}
	m.log.Debug().
		Str("requester", requesterID.String()).
		Int("pool", len(pool)).
		Int("eligible", len(eligible)).
		Msg("candidates evaluated")
	if len(eligible) == 0 {
		return nil, ErrNoCandidates
	}

	chosen := eligible[m.pick(len(eligible))]
	if err := m.rel.AddContact(ctx, requesterID, chosen.ID); err != nil {
		return nil, err
	}
	m.log.Info().Str("requester", requesterID.String()).Str("contact", chosen.ID.String()).Msg("new contact")

	m.openConversation(requesterID, chosen.ID)

	public := chosen.Public()
	return &public, nil
}

// prefilter builds the store-side filter. ok is false when the requester's
// own preferences already rule out everyone.
func prefilter(requester *models.User, excluded graph.Set) (repository.CandidateFilter, bool) {
	switches := requester.Settings.MatchingSwitches()
	f := repository.CandidateFilter{Exclude: excluded.Slice(), Switches: &switches}
	if requester.Settings.ConsiderGender {
		if len(requester.Settings.PreferredGender) == 0 {
			return f, false
		}
		for _, g := range requester.Settings.PreferredGender {
			f.Genders = append(f.Genders, models.Gender(g))
		}
	}
	if requester.Settings.ConsiderHobbies {
		if len(requester.Interests.Hobbies) == 0 {
			return f, false
		}
		f.AnyHobby = append(f.AnyHobby, requester.Interests.Hobbies...)
	}
	return f, true
}

// openConversation generates a topic in the background. Its outcome never
// reaches the caller of FindNewContact.
func (m *Matcher) openConversation(from, to uuid.UUID) {
	if m.topics == nil {
		return
	}
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.topicTimeout)
		defer cancel()
		if _, err := m.topics.Generate(ctx, from, to); err != nil {
			m.log.Warn().Err(err).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("topic generation failed")
		}
	}()
}

// Wait blocks until background topic generation has finished.
func (m *Matcher) Wait() {
	m.inflight.Wait()
}
