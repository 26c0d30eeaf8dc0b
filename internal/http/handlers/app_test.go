package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"copystudio/internal/billing"
	"copystudio/internal/domain"
	"copystudio/internal/session"
)

type fakeAuth struct {
	err    error
	calls  []string
	emails []string
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) error {
	f.calls = append(f.calls, "login")
	f.emails = append(f.emails, email)
	return f.err
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) error {
	f.calls = append(f.calls, "signup")
	return f.err
}

func (f *fakeAuth) SignInWithMagicLink(ctx context.Context, email string) error {
	f.calls = append(f.calls, "magic-link")
	return f.err
}

func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) error {
	f.calls = append(f.calls, "recover")
	return f.err
}

func (f *fakeAuth) UpdatePassword(ctx context.Context, newPassword string) error {
	f.calls = append(f.calls, "update-password")
	return f.err
}

type fakeSessions struct {
	state      session.State
	user       *domain.User
	history    []domain.GenerationHistory
	signOutErr error
}

func (f *fakeSessions) State() session.State { return f.state }

func (f *fakeSessions) Snapshot() (session.State, *domain.User, []domain.GenerationHistory) {
	return f.state, f.user, f.history
}

func (f *fakeSessions) SignOut(ctx context.Context) error {
	f.state = session.StateAnonymous
	f.user = nil
	return f.signOutErr
}

type fakeWorkspace struct {
	entry domain.GenerationHistory
	err   error
	tone  string
	calls int
}

func (f *fakeWorkspace) Generate(ctx context.Context, contentType domain.ContentType, topic, tone string) (domain.GenerationHistory, error) {
	f.calls++
	f.tone = tone
	return f.entry, f.err
}

type fakePayments struct {
	order     *billing.Order
	orderErr  error
	verify    *billing.VerifyResult
	verifyErr error
}

func (f *fakePayments) CreateOrder(ctx context.Context, planID string, amount int) (*billing.Order, error) {
	return f.order, f.orderErr
}

func (f *fakePayments) VerifyPayment(ctx context.Context, req billing.VerifyRequest) (*billing.VerifyResult, error) {
	return f.verify, f.verifyErr
}

func authedUser() *domain.User {
	return &domain.User{
		ID:      "u-1",
		Name:    "ada",
		Email:   "ada@example.com",
		Plan:    domain.PlanFree,
		Credits: domain.StartingCredits,
	}
}

func newTestApp(auth *fakeAuth, sessions *fakeSessions, ws *fakeWorkspace, payments PaymentGateway) *App {
	if auth == nil {
		auth = &fakeAuth{}
	}
	if sessions == nil {
		sessions = &fakeSessions{state: session.StateAnonymous}
	}
	if ws == nil {
		ws = &fakeWorkspace{}
	}
	if payments == nil {
		payments = &fakePayments{}
	}
	return NewApp(zerolog.Nop(), sessions, auth, ws, payments)
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}
