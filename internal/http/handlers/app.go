package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"copystudio/internal/billing"
	"copystudio/internal/domain"
	"copystudio/internal/session"
)

// AuthGateway is the slice of the identity client the auth handlers need.
type AuthGateway interface {
	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignInWithMagicLink(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, newPassword string) error
}

// SessionView is what the page and auth handlers read from the session store.
type SessionView interface {
	State() session.State
	Snapshot() (session.State, *domain.User, []domain.GenerationHistory)
	SignOut(ctx context.Context) error
}

// ContentGenerator drives one generation request end to end.
type ContentGenerator interface {
	Generate(ctx context.Context, contentType domain.ContentType, topic, tone string) (domain.GenerationHistory, error)
}

// PaymentGateway is the slice of the billing client the handlers need.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, planID string, amount int) (*billing.Order, error)
	VerifyPayment(ctx context.Context, req billing.VerifyRequest) (*billing.VerifyResult, error)
}

// App bundles the handler dependencies.
type App struct {
	Logger    zerolog.Logger
	Sessions  SessionView
	Auth      AuthGateway
	Workspace ContentGenerator
	Payments  PaymentGateway

	validate *validator.Validate
}

// NewApp wires an App container.
func NewApp(logger zerolog.Logger, sessions SessionView, auth AuthGateway, ws ContentGenerator, payments PaymentGateway) *App {
	return &App{
		Logger:    logger,
		Sessions:  sessions,
		Auth:      auth,
		Workspace: ws,
		Payments:  payments,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// decodeValid decodes the JSON body into dst and runs struct validation.
// Validation failures never reach the network.
func (a *App) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		a.error(w, http.StatusBadRequest, "validation", err.Error())
		return false
	}
	return true
}
