package service

import (
	"time"

	"mca-api/internal/domain"
)

// DefaultMinActivity is the activity count a user needs in a mode to nominate for it
const DefaultMinActivity = 1

// EligibilityEvaluator decides whether a user may take part in a cycle year
type EligibilityEvaluator struct {
	minActivity int
}

func NewEligibilityEvaluator(minActivity int) *EligibilityEvaluator {
	if minActivity < 1 {
		minActivity = DefaultMinActivity
	}
	return &EligibilityEvaluator{minActivity: minActivity}
}

// IsEligible is the coarse gate: an unrestricted account that existed during
// year and was active in at least one mode
func (e *EligibilityEvaluator) IsEligible(user *domain.User, year int) bool {
	if user == nil || user.Restricted {
		return false
	}
	endOfYear := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !user.RegisteredAt.IsZero() && !user.RegisteredAt.Before(endOfYear) {
		return false
	}
	for _, mode := range domain.Modes {
		if e.IsEligibleFor(user, mode, year) {
			return true
		}
	}
	return false
}

// IsEligibleFor sums the user's activity in mode up to and including year
func (e *EligibilityEvaluator) IsEligibleFor(user *domain.User, mode domain.Mode, year int) bool {
	if user == nil {
		return false
	}
	total := 0
	for _, a := range user.Activity {
		if a.Mode == mode && a.Year <= year {
			total += a.Count
		}
	}
	return total >= e.minActivity
}
