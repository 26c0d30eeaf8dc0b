package handlers

import (
	"net/http"
	"net/url"

	"copystudio/internal/domain"
	"copystudio/internal/guard"
	"copystudio/internal/workspace"
)

// Guard applies the route policy to every page navigation. Waiting renders a
// neutral loading payload so no redirect is ever issued before the initial
// session probe resolves.
func (a *App) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := guard.Decide(a.Sessions.State(), r.URL.Path)
		switch decision.Action {
		case guard.ActionWait:
			w.Header().Set("Retry-After", "1")
			a.json(w, http.StatusOK, map[string]string{"status": "loading"})
		case guard.ActionRedirect:
			target := decision.Target
			if decision.From != "" {
				target += "?from=" + url.QueryEscape(decision.From)
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// RedirectHome sends any unknown path back to the landing page.
func (a *App) RedirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, guard.PathRoot, http.StatusSeeOther)
}

// Landing is the public marketing page.
func (a *App) Landing(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"page":  "landing",
		"plans": planCatalog,
	})
}

// AuthPage describes the sign-in surface.
func (a *App) AuthPage(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"page":    "auth",
		"methods": []string{"magic-link", "password"},
	})
}

// ForgotPasswordPage describes the reset-request surface.
func (a *App) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"page": "forgot-password"})
}

// UpdatePasswordPage is the completion step of a reset flow; it is reachable
// in every session state.
func (a *App) UpdatePasswordPage(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"page": "update-password", "min_password_length": 6})
}

// Dashboard shows the signed-in user's usage and history.
func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	_, user, history := a.Sessions.Snapshot()
	a.json(w, http.StatusOK, map[string]any{
		"page":        "dashboard",
		"user":        user,
		"history":     history,
		"generations": len(history),
		"words_used":  userUsage(user),
		"word_limit":  domain.FreeWordLimit,
	})
}

// WorkspacePage lists the generation controls for the workspace form.
func (a *App) WorkspacePage(w http.ResponseWriter, r *http.Request) {
	_, user, _ := a.Sessions.Snapshot()
	canGenerate := user != nil && workspace.CanGenerate(*user)
	a.json(w, http.StatusOK, map[string]any{
		"page":          "workspace",
		"user":          user,
		"content_types": domain.ContentTypes,
		"tones":         []string{"Professional", "Casual", "Enthusiastic", "Witty", "Urgent"},
		"can_generate":  canGenerate,
	})
}

// BillingPage shows the plan catalog and the user's current plan.
func (a *App) BillingPage(w http.ResponseWriter, r *http.Request) {
	_, user, _ := a.Sessions.Snapshot()
	a.json(w, http.StatusOK, map[string]any{
		"page":  "billing",
		"user":  user,
		"plans": planCatalog,
	})
}

// SettingsPage shows the account profile.
func (a *App) SettingsPage(w http.ResponseWriter, r *http.Request) {
	_, user, _ := a.Sessions.Snapshot()
	a.json(w, http.StatusOK, map[string]any{
		"page": "settings",
		"user": user,
	})
}

type planInfo struct {
	ID           string          `json:"id"`
	Name         domain.PlanTier `json:"name"`
	MonthlyPrice int             `json:"monthly_price"`
	WordLimit    int             `json:"word_limit,omitempty"`
}

var planCatalog = []planInfo{
	{ID: "free", Name: domain.PlanFree, MonthlyPrice: 0, WordLimit: domain.FreeWordLimit},
	{ID: "pro", Name: domain.PlanPro, MonthlyPrice: 29},
	{ID: "enterprise", Name: domain.PlanEnterprise, MonthlyPrice: 99},
}

func userUsage(u *domain.User) int {
	if u == nil {
		return 0
	}
	return u.UsageThisMonth
}
