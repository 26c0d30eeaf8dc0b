package domain

// PlanTier enumerates subscription plans.
type PlanTier string

const (
	PlanFree       PlanTier = "Free"
	PlanPro        PlanTier = "Pro"
	PlanEnterprise PlanTier = "Enterprise"
)

const (
	// StartingCredits is the allotment assigned to every freshly mapped session.
	StartingCredits = 500
	// GenerationCost is the flat credit cost of one successful generation.
	GenerationCost = 10
	// FreeWordLimit caps monthly word usage on the free plan.
	FreeWordLimit = 5000
)

// User represents the signed-in principal for the lifetime of the process.
// The session store owns the canonical value; everything else receives copies.
type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Plan           PlanTier `json:"plan"`
	Credits        int      `json:"credits"`
	UsageThisMonth int      `json:"usage_this_month"`
}

// IsFree reports whether the user is on the free plan.
func (u User) IsFree() bool {
	return u.Plan == PlanFree
}
