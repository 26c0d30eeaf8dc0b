package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"copystudio/internal/domain"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	content string
	err     error
	entered chan struct{} // closed when Generate is first entered
	block   chan struct{} // when set, Generate waits until closed
}

func (g *fakeGenerator) Generate(ctx context.Context, contentType domain.ContentType, topic, tone string) (string, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	entered := g.entered
	block := g.block
	g.mu.Unlock()
	if first && entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	return g.content, g.err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeState struct {
	mu      sync.Mutex
	user    *domain.User
	applied []domain.GenerationHistory
}

func (s *fakeState) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *fakeState) ApplyGeneration(entry domain.GenerationHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, entry)
	return nil
}

func freeUser() *domain.User {
	return &domain.User{ID: "u-1", Plan: domain.PlanFree, Credits: 500}
}

func TestGenerateSuccessFoldsEntry(t *testing.T) {
	gen := &fakeGenerator{content: "generated text here"}
	state := &fakeState{user: freeUser()}
	ws := New(gen, state, zerolog.Nop())

	entry, err := ws.Generate(context.Background(), domain.ContentBlog, "remote work", "Casual")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if entry.Content != "generated text here" {
		t.Fatalf("entry.Content = %q", entry.Content)
	}
	if entry.Type != domain.ContentBlog || entry.Topic != "remote work" {
		t.Fatalf("entry = %+v", entry)
	}
	if len(state.applied) != 1 {
		t.Fatalf("ApplyGeneration called %d times, want 1", len(state.applied))
	}
}

func TestGenerateEmptyTopicShortCircuits(t *testing.T) {
	gen := &fakeGenerator{content: "text"}
	state := &fakeState{user: freeUser()}
	ws := New(gen, state, zerolog.Nop())

	_, err := ws.Generate(context.Background(), domain.ContentBlog, "   ", "Casual")
	if !errors.Is(err, domain.ErrEmptyTopic) {
		t.Fatalf("err = %v, want ErrEmptyTopic", err)
	}
	if gen.callCount() != 0 {
		t.Fatal("provider must not be called for an empty topic")
	}
	if len(state.applied) != 0 {
		t.Fatal("state must not change for an empty topic")
	}
}

func TestGenerateUnknownTypeRejected(t *testing.T) {
	ws := New(&fakeGenerator{}, &fakeState{user: freeUser()}, zerolog.Nop())
	_, err := ws.Generate(context.Background(), domain.ContentType("Haiku"), "topic", "Witty")
	if !errors.Is(err, domain.ErrInvalidContentType) {
		t.Fatalf("err = %v, want ErrInvalidContentType", err)
	}
}

func TestGenerateRequiresUser(t *testing.T) {
	ws := New(&fakeGenerator{}, &fakeState{}, zerolog.Nop())
	_, err := ws.Generate(context.Background(), domain.ContentBlog, "topic", "Casual")
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
}

func TestGenerateOverLimitRejected(t *testing.T) {
	gen := &fakeGenerator{}
	user := freeUser()
	user.UsageThisMonth = domain.FreeWordLimit
	ws := New(gen, &fakeState{user: user}, zerolog.Nop())

	_, err := ws.Generate(context.Background(), domain.ContentBlog, "topic", "Casual")
	if !errors.Is(err, domain.ErrUsageLimitReached) {
		t.Fatalf("err = %v, want ErrUsageLimitReached", err)
	}
	if gen.callCount() != 0 {
		t.Fatal("provider must not be called over the limit")
	}
}

func TestGenerateFailureLeavesStateUntouched(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("provider exploded")}
	state := &fakeState{user: freeUser()}
	ws := New(gen, state, zerolog.Nop())

	_, err := ws.Generate(context.Background(), domain.ContentBlog, "topic", "Casual")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("err = %v, want the generic generation failure", err)
	}
	if len(state.applied) != 0 {
		t.Fatal("failed generation must not mutate state")
	}
}

func TestGenerateRejectsConcurrentSubmission(t *testing.T) {
	gen := &fakeGenerator{content: "text", entered: make(chan struct{}), block: make(chan struct{})}
	state := &fakeState{user: freeUser()}
	ws := New(gen, state, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := ws.Generate(context.Background(), domain.ContentBlog, "first", "Casual")
		done <- err
	}()
	// Wait for the first request to enter the provider call.
	<-gen.entered

	_, err := ws.Generate(context.Background(), domain.ContentTweet, "second", "Casual")
	if !errors.Is(err, domain.ErrGenerationInFlight) {
		t.Fatalf("err = %v, want ErrGenerationInFlight", err)
	}

	close(gen.block)
	if err := <-done; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
	// The workspace is idle again.
	if _, err := ws.Generate(context.Background(), domain.ContentBlog, "third", "Casual"); err != nil {
		t.Fatalf("follow-up generation failed: %v", err)
	}
}
