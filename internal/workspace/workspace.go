package workspace

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"copystudio/internal/domain"
)

// Generator produces content for a prompt. Implemented by the generation
// provider client.
type Generator interface {
	Generate(ctx context.Context, contentType domain.ContentType, topic, tone string) (string, error)
}

// SessionState is the slice of the session store the workspace needs: read
// the current user and fold a finished generation back in.
type SessionState interface {
	CurrentUser() (domain.User, bool)
	ApplyGeneration(entry domain.GenerationHistory) error
}

// Workspace drives one generation request at a time. A request moves through
// idle -> submitting -> succeeded/failed and always returns to idle; while
// one is submitting, further submissions are rejected.
type Workspace struct {
	gen    Generator
	state  SessionState
	logger zerolog.Logger

	mu       sync.Mutex
	inFlight bool
}

// New builds a Workspace around the given provider and session state.
func New(gen Generator, state SessionState, logger zerolog.Logger) *Workspace {
	return &Workspace{gen: gen, state: state, logger: logger}
}

// Generate validates the request, calls the provider and, only on success,
// folds the result into history and the user's counters. Failures leave user
// and history untouched.
func (w *Workspace) Generate(ctx context.Context, contentType domain.ContentType, topic, tone string) (domain.GenerationHistory, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.GenerationHistory{}, domain.ErrEmptyTopic
	}
	if !contentType.Valid() {
		return domain.GenerationHistory{}, domain.ErrInvalidContentType
	}
	user, ok := w.state.CurrentUser()
	if !ok {
		return domain.GenerationHistory{}, domain.ErrAuthRequired
	}
	if !CanGenerate(user) {
		return domain.GenerationHistory{}, domain.ErrUsageLimitReached
	}

	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return domain.GenerationHistory{}, domain.ErrGenerationInFlight
	}
	w.inFlight = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	content, err := w.gen.Generate(ctx, contentType, topic, tone)
	if err != nil {
		w.logger.Error().Err(err).Str("type", string(contentType)).Msg("generation failed")
		return domain.GenerationHistory{}, domain.ErrGenerationFailed
	}

	entry := domain.NewHistoryEntry(contentType, topic, content)
	if err := w.state.ApplyGeneration(entry); err != nil {
		return domain.GenerationHistory{}, err
	}
	return entry, nil
}
