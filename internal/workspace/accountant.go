package workspace

import (
	"strings"

	"copystudio/internal/domain"
)

// CanGenerate reports whether the user may start another generation. Paid
// plans are unmetered; the free plan is gated by the monthly word limit.
func CanGenerate(u domain.User) bool {
	return !u.IsFree() || u.UsageThisMonth < domain.FreeWordLimit
}

// ApplyGeneration folds one completed generation into the user and history.
// The entry is prepended (newest first), credits drop by the flat cost and
// usage grows by the entry's word count. Credits are deliberately not floored
// at zero; there is no server-side balance to reconcile against.
func ApplyGeneration(u domain.User, history []domain.GenerationHistory, entry domain.GenerationHistory) (domain.User, []domain.GenerationHistory) {
	updated := make([]domain.GenerationHistory, 0, len(history)+1)
	updated = append(updated, entry)
	updated = append(updated, history...)

	u.Credits -= domain.GenerationCost
	u.UsageThisMonth += WordCount(entry.Content)
	return u, updated
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
