package handlers

import (
	"errors"
	"net/http"

	"copystudio/internal/domain"
	"copystudio/internal/identity"
	"copystudio/internal/metrics"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type updatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// Login exchanges credentials for a session. The session store picks up the
// SIGNED_IN event before this handler returns, so the response can include
// the mapped user.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !a.decodeValid(w, r, &req) {
		return
	}
	if err := a.Auth.SignInWithPassword(r.Context(), req.Email, req.Password); err != nil {
		a.authError(w, err, "sign-in failed")
		return
	}
	metrics.AuthEventsTotal.WithLabelValues("signed_in").Inc()
	_, user, _ := a.Sessions.Snapshot()
	a.json(w, http.StatusOK, map[string]any{"user": user})
}

// Signup registers a new account. The provider emails a confirmation link;
// when confirmation is disabled the user is signed in immediately.
func (a *App) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !a.decodeValid(w, r, &req) {
		return
	}
	if err := a.Auth.SignUp(r.Context(), req.Email, req.Password); err != nil {
		a.authError(w, err, "sign-up failed")
		return
	}
	metrics.AuthEventsTotal.WithLabelValues("signed_up").Inc()
	a.json(w, http.StatusOK, map[string]string{
		"message": "Account created! Please check your email to verify.",
	})
}

// MagicLink asks the provider to email a one-time sign-in link.
func (a *App) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !a.decodeValid(w, r, &req) {
		return
	}
	if err := a.Auth.SignInWithMagicLink(r.Context(), req.Email); err != nil {
		a.authError(w, err, "magic link request failed")
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"message": "Check your email for the magic link!",
	})
}

// Recover asks the provider to email password reset instructions.
func (a *App) Recover(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !a.decodeValid(w, r, &req) {
		return
	}
	if err := a.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		a.authError(w, err, "password reset request failed")
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"message": "Check your email for the password reset link.",
	})
}

// UpdatePassword completes a reset flow by setting the new password.
func (a *App) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !a.decodeValid(w, r, &req) {
		return
	}
	if err := a.Auth.UpdatePassword(r.Context(), req.Password); err != nil {
		a.authError(w, err, "password update failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout terminates the session.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.SignOut(r.Context()); err != nil {
		a.Logger.Warn().Err(err).Msg("provider sign-out failed")
	}
	metrics.AuthEventsTotal.WithLabelValues("signed_out").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// authError maps identity failures onto HTTP responses. Provider-reported
// messages pass through verbatim; transport failures get a generic message.
func (a *App) authError(w http.ResponseWriter, err error, fallback string) {
	var perr *identity.ProviderError
	switch {
	case errors.As(err, &perr):
		status := perr.Status
		if status < 400 || status >= 500 {
			status = http.StatusUnauthorized
		}
		a.error(w, status, "auth", perr.Message)
	case errors.Is(err, domain.ErrNoSession):
		a.error(w, http.StatusUnauthorized, "auth", "no active session")
	default:
		a.Logger.Error().Err(err).Msg(fallback)
		a.error(w, http.StatusBadGateway, "transport", "identity provider unreachable")
	}
}
