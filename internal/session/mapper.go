package session

import (
	"strings"

	"copystudio/internal/domain"
	"copystudio/internal/identity"
)

// Map translates a provider session into the application's User. It is pure
// and deterministic: plan, credits and usage always start from the defaults,
// which means locally accumulated counters are discarded whenever the
// provider re-emits a session.
func Map(sess *identity.Session) domain.User {
	email := ""
	id := ""
	if sess != nil {
		email = sess.User.Email
		id = sess.User.ID
	}
	name := "User"
	if email != "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return domain.User{
		ID:             id,
		Name:           name,
		Email:          email,
		Plan:           domain.PlanFree,
		Credits:        domain.StartingCredits,
		UsageThisMonth: 0,
	}
}
