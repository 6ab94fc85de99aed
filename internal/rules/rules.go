// Package rules holds the nomination validation rules. Every function is pure and
// operates on collections already scoped to a single nominator and cycle year.
package rules

import (
	"mca-api/internal/domain"
)

// CategoryRequirementCheck reports whether target is unlocked for a nominator
// holding existing. Required categories are always open; a non-required category
// needs a valid nomination in a required category of the same type and mode.
func CategoryRequirementCheck(existing []*domain.Nomination, target *domain.Category) bool {
	if target.IsRequired {
		return true
	}
	key := target.RequiredGroupKey()
	for _, n := range existing {
		if n.Category == nil || !n.Category.IsRequired || !n.IsValid {
			continue
		}
		if n.Category.RequiredGroupKey() == key {
			return true
		}
	}
	return false
}

// InCategory returns the nominations that belong to categoryID
func InCategory(existing []*domain.Nomination, categoryID int) []*domain.Nomination {
	var out []*domain.Nomination
	for _, n := range existing {
		if n.Category != nil && n.Category.ID == categoryID {
			out = append(out, n)
		}
	}
	return out
}

func ValidateQuota(inCategory []*domain.Nomination, maxNominations int) *domain.Rejection {
	if len(inCategory) >= maxNominations {
		return domain.Reject(domain.ReasonQuotaExceeded, domain.MsgQuotaExceeded)
	}
	return nil
}

// ValidateDuplicate rejects a candidate the nominator already picked in the category
func ValidateDuplicate(inCategory []*domain.Nomination, candidate domain.Candidate) *domain.Rejection {
	for _, n := range inCategory {
		if n.Candidate == nil {
			continue
		}
		if n.Candidate.CandidateType() == candidate.CandidateType() && n.Candidate.CandidateID() == candidate.CandidateID() {
			msg := domain.MsgDuplicateBeatmapset
			if candidate.CandidateType() == domain.CategoryTypeUsers {
				msg = domain.MsgDuplicateUser
			}
			return domain.Reject(domain.ReasonDuplicateCandidate, msg)
		}
	}
	return nil
}

// ValidateCandidateYear requires a beatmapset to be ranked in the category's year
func ValidateCandidateYear(set *domain.Beatmapset, category *domain.Category) *domain.Rejection {
	if set.ApprovedYear() != category.Year {
		return domain.Reject(domain.ReasonYearMismatch, domain.MsgYearMismatch)
	}
	return nil
}

// ValidateCandidate runs every check a candidate must pass to be nominated into
// category, given the nominator's nominations already in that category.
func ValidateCandidate(inCategory []*domain.Nomination, category *domain.Category, candidate domain.Candidate) *domain.Rejection {
	if candidate.CandidateType() != category.Type {
		return domain.Reject(domain.ReasonTypeMismatch, domain.MsgTypeMismatch)
	}
	if r := ValidateDuplicate(inCategory, candidate); r != nil {
		return r
	}

	switch c := candidate.(type) {
	case *domain.Beatmapset:
		if r := ValidateCandidateYear(c, category); r != nil {
			return r
		}
		return ValidateAttributeFilter(c, category.Filter)
	case *domain.UserCandidate:
		return nil
	default:
		panic("rules: unhandled candidate type")
	}
}
