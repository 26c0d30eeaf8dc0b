// Package guard decides, per navigation target, whether a page renders or
// the visitor is redirected. Decisions are pure functions of (state, path)
// so the policy is trivially testable and repeatable.
package guard

import "copystudio/internal/session"

// Route paths making up the application surface.
const (
	PathRoot           = "/"
	PathAuth           = "/auth"
	PathForgotPassword = "/forgot-password"
	PathUpdatePassword = "/update-password"
	PathDashboard      = "/dashboard"
	PathWorkspace      = "/workspace"
	PathBilling        = "/billing"
	PathSettings       = "/settings"
)

// DefaultAuthenticatedPath is where signed-in visitors land from public pages.
const DefaultAuthenticatedPath = PathDashboard

// Action is the kind of decision the guard reaches.
type Action int

const (
	// ActionRender lets the requested page render.
	ActionRender Action = iota
	// ActionRedirect sends the visitor to Decision.Target.
	ActionRedirect
	// ActionWait shows a neutral waiting indicator; no redirect may be
	// issued while the initial session probe is unresolved.
	ActionWait
)

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Action Action
	// Target is the redirect destination when Action is ActionRedirect.
	Target string
	// From remembers the originally requested path for post-login return.
	From string
}

var publicPaths = map[string]bool{
	PathRoot:           true,
	PathAuth:           true,
	PathForgotPassword: true,
}

var protectedPaths = map[string]bool{
	PathDashboard: true,
	PathWorkspace: true,
	PathBilling:   true,
	PathSettings:  true,
}

// Decide applies the route policy. While the session state is still loading
// it always waits, preventing a flash-redirect to the auth page before the
// initial probe resolves.
func Decide(state session.State, path string) Decision {
	if state == session.StateLoading {
		return Decision{Action: ActionWait}
	}
	switch {
	case publicPaths[path]:
		if state == session.StateAuthenticated {
			return Decision{Action: ActionRedirect, Target: DefaultAuthenticatedPath}
		}
		return Decision{Action: ActionRender}
	case path == PathUpdatePassword:
		// Always reachable: it completes a reset flow that may run without a
		// fully established session.
		return Decision{Action: ActionRender}
	case protectedPaths[path]:
		if state == session.StateAuthenticated {
			return Decision{Action: ActionRender}
		}
		return Decision{Action: ActionRedirect, Target: PathAuth, From: path}
	default:
		return Decision{Action: ActionRedirect, Target: PathRoot}
	}
}
