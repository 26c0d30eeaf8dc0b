package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"copystudio/internal/domain"
	"copystudio/internal/identity"
	"copystudio/internal/workspace"
)

// State names the auth phase of the running application.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Gateway is the slice of the identity client the store depends on.
type Gateway interface {
	CurrentSession(ctx context.Context) (*identity.Session, error)
	Subscribe(fn identity.Handler) func()
	SignOut(ctx context.Context) error
}

// Store is the single source of truth for the current user and generation
// history. It is the only writer of either; every transition happens under
// one lock so user and history can never drift apart for the same event.
type Store struct {
	gw     Gateway
	logger zerolog.Logger

	mu      sync.Mutex
	state   State
	user    *domain.User
	history []domain.GenerationHistory
	// epoch increments on every applied auth event. An in-flight session
	// probe records the epoch it started under and discards its result if a
	// newer event landed first.
	epoch uint64

	unsubscribe func()
	closeOnce   sync.Once
}

// NewStore builds a Store in the Loading state.
func NewStore(gw Gateway, logger zerolog.Logger) *Store {
	return &Store{gw: gw, logger: logger, state: StateLoading}
}

// Bootstrap subscribes to provider transitions and then probes for an
// existing session. The subscription is established first so no event emitted
// during the probe can be missed; the epoch guard makes the newest event win
// regardless of arrival order.
func (s *Store) Bootstrap(ctx context.Context) {
	s.unsubscribe = s.gw.Subscribe(s.onAuthEvent)

	s.mu.Lock()
	before := s.epoch
	s.mu.Unlock()

	sess, err := s.gw.CurrentSession(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != before {
		// A provider event arrived while the probe was in flight; its result
		// is stale and must not roll the state back.
		s.logger.Debug().Msg("session probe superseded by auth event")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("session probe failed")
		if s.state == StateLoading {
			s.toAnonymousLocked()
		}
		return
	}
	if sess != nil {
		s.toAuthenticatedLocked(Map(sess))
		return
	}
	if s.state == StateLoading {
		s.toAnonymousLocked()
	}
}

// Close releases the provider subscription. Safe to call once per store.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}

func (s *Store) onAuthEvent(event identity.Event, sess *identity.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case event == identity.EventSignedOut:
		s.toAnonymousLocked()
	case sess != nil:
		s.toAuthenticatedLocked(Map(sess))
	case s.state == StateLoading:
		s.toAnonymousLocked()
	}
}

func (s *Store) toAuthenticatedLocked(u domain.User) {
	s.state = StateAuthenticated
	s.user = &u
	s.epoch++
	s.logger.Info().Str("user_id", u.ID).Msg("session established")
}

func (s *Store) toAnonymousLocked() {
	s.state = StateAnonymous
	s.user = nil
	s.epoch++
}

// State returns the current auth phase.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentUser returns a copy of the signed-in user, if any.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Snapshot returns the state plus read-only copies of user and history.
func (s *Store) Snapshot() (State, *domain.User, []domain.GenerationHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var u *domain.User
	if s.user != nil {
		copied := *s.user
		u = &copied
	}
	history := make([]domain.GenerationHistory, len(s.history))
	copy(history, s.history)
	return s.state, u, history
}

// ApplyGeneration folds one completed generation into history and the user's
// credit/usage counters in a single transition. It must be called exactly
// once per successful generation and never on failure.
func (s *Store) ApplyGeneration(entry domain.GenerationHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.ErrAuthRequired
	}
	user, history := workspace.ApplyGeneration(*s.user, s.history, entry)
	s.user = &user
	s.history = history
	return nil
}

// SignOut terminates the provider session and drops the local user. The
// gateway emits SIGNED_OUT, which lands here through the subscription, but
// the state is cleared directly as well so sign-out never depends on event
// delivery.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.gw.SignOut(ctx)
	s.mu.Lock()
	s.toAnonymousLocked()
	s.mu.Unlock()
	return err
}
