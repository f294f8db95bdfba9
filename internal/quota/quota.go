// Package quota implements the per-user monthly AI request ledger.
//
// The monthly counter resets lazily: whenever a check runs in a different
// calendar month/year than the stored last-reset timestamp, the counter is
// zeroed before the limit comparison. There is no peek: every admitted check
// consumes one unit, even if the downstream operation later fails.
package quota

import (
	"time"

	"resume-forge/internal/models"
)

// tierLimits is the fixed monthly allowance per subscription tier.
var tierLimits = map[models.Tier]int{
	models.TierFree:       5,
	models.TierPremium:    100,
	models.TierEnterprise: 1000,
}

// LimitFor returns the monthly limit for a tier. Unknown or empty tiers get
// the free allowance.
func LimitFor(tier models.Tier) int {
	if limit, ok := tierLimits[tier]; ok {
		return limit
	}
	return tierLimits[models.TierFree]
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset reports that the calendar month rolled over and the counter was
	// zeroed during this check.
	Reset bool
}

func needsReset(lastReset, now time.Time) bool {
	return lastReset.Year() != now.Year() || lastReset.Month() != now.Month()
}

// Snapshot reports the ledger state without consuming a unit or mutating the
// user, accounting for a pending month rollover. Used by the usage view only;
// guarded operations always go through Evaluate.
func Snapshot(u *models.User, now time.Time) Decision {
	limit := LimitFor(u.Tier)

	count := u.MonthlyCount
	reset := needsReset(u.LastResetAt, now)
	if reset {
		count = 0
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count < limit,
		Limit:     limit,
		Remaining: remaining,
		Reset:     reset,
	}
}

// Evaluate applies the lazy monthly reset to u, compares the counter against
// the tier limit and, when admitted, consumes one unit. The user is mutated
// in place; the caller is responsible for persisting it either way, since the
// reset happens even on a rejected check.
func Evaluate(u *models.User, now time.Time) Decision {
	limit := LimitFor(u.Tier)

	reset := needsReset(u.LastResetAt, now)
	if reset {
		u.MonthlyCount = 0
		u.LastResetAt = now
	}

	if u.MonthlyCount >= limit {
		return Decision{Allowed: false, Limit: limit, Remaining: 0, Reset: reset}
	}

	u.MonthlyCount++
	u.LifetimeCount++

	return Decision{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - u.MonthlyCount,
		Reset:     reset,
	}
}
