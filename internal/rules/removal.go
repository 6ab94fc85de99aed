package rules

import "mca-api/internal/domain"

// FindNomination looks up id among a nominator's nominations
func FindNomination(existing []*domain.Nomination, id int) *domain.Nomination {
	for _, n := range existing {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// HasDependents reports whether removing target would strand non-required
// nominations of the same type and mode. Dependents count whether or not they
// have been reviewed.
func HasDependents(existing []*domain.Nomination, target *domain.Nomination) bool {
	if target.Category == nil || !target.Category.IsRequired {
		return false
	}
	key := target.Category.RequiredGroupKey()
	for _, n := range existing {
		if n.ID == target.ID || n.Category == nil || n.Category.IsRequired {
			continue
		}
		if n.Category.RequiredGroupKey() == key {
			return true
		}
	}
	return false
}

// ValidateRemoval checks whether target may be withdrawn by its nominator
func ValidateRemoval(existing []*domain.Nomination, target *domain.Nomination) *domain.Rejection {
	if target.Locked() {
		return domain.Reject(domain.ReasonAlreadyReviewed, domain.MsgAlreadyReviewed)
	}
	if HasDependents(existing, target) {
		return domain.Reject(domain.ReasonRequiredHasDependents, domain.MsgRequiredHasDependents)
	}
	return nil
}
