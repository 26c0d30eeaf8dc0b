package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"copystudio/internal/guard"
	"copystudio/internal/http/handlers"
	"copystudio/internal/infra"
	mw "copystudio/internal/middleware"
)

// NewRouter assembles the full route surface: guarded pages, the JSON action
// API, health and metrics.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		mw.Logger(logger),
		mw.CORS(cfg.CORSOrigins),
	)

	// Pages: the guard decides render vs redirect per navigation.
	r.Group(func(r chi.Router) {
		r.Use(app.Guard)
		r.Get(guard.PathRoot, app.Landing)
		r.Get(guard.PathAuth, app.AuthPage)
		r.Get(guard.PathForgotPassword, app.ForgotPasswordPage)
		r.Get(guard.PathUpdatePassword, app.UpdatePasswordPage)
		r.Get(guard.PathDashboard, app.Dashboard)
		r.Get(guard.PathWorkspace, app.WorkspacePage)
		r.Get(guard.PathBilling, app.BillingPage)
		r.Get(guard.PathSettings, app.SettingsPage)
	})
	r.NotFound(app.RedirectHome)

	// Actions.
	r.Route("/api", func(r chi.Router) {
		r.Use(mw.RateLimit(cfg.RateLimitPerMin, time.Minute))
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", app.Login)
			r.Post("/signup", app.Signup)
			r.Post("/magic-link", app.MagicLink)
			r.Post("/recover", app.Recover)
			r.Post("/update-password", app.UpdatePassword)
			r.Post("/logout", app.Logout)
		})
		r.Post("/generate", app.Generate)
		r.Route("/billing", func(r chi.Router) {
			r.Post("/orders", app.CreateOrder)
			r.Post("/verify", app.VerifyPayment)
		})
	})

	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
