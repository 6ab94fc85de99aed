package domain

// RejectionReason classifies a business-rule rejection
type RejectionReason string

const (
	ReasonNotEligible           RejectionReason = "not_eligible"
	ReasonInactiveForMode       RejectionReason = "inactive_for_mode"
	ReasonGrandAwardRequired    RejectionReason = "grand_award_required"
	ReasonQuotaExceeded         RejectionReason = "quota_exceeded"
	ReasonDuplicateCandidate    RejectionReason = "duplicate_candidate"
	ReasonYearMismatch          RejectionReason = "year_mismatch"
	ReasonFilterViolation       RejectionReason = "filter_violation"
	ReasonAlreadyReviewed       RejectionReason = "already_reviewed"
	ReasonRequiredHasDependents RejectionReason = "required_has_dependents"
	ReasonTypeMismatch          RejectionReason = "type_mismatch"
)

// FilterBound names the category filter bound a candidate failed
type FilterBound string

const (
	BoundMinLength FilterBound = "minLength"
	BoundMaxLength FilterBound = "maxLength"
	BoundMinBPM    FilterBound = "minBPM"
	BoundMaxBPM    FilterBound = "maxBPM"
	BoundMinSR     FilterBound = "minSR"
	BoundMaxSR     FilterBound = "maxSR"
	BoundMinCS     FilterBound = "minCS"
	BoundMaxCS     FilterBound = "maxCS"
)

// Rejection is an expected refusal of a nominating action. It is returned as a
// value and rendered as {"error": message} with a 200 status.
type Rejection struct {
	Reason  RejectionReason `json:"-"`
	Message string          `json:"error"`
	Bound   FilterBound     `json:"-"`
}

func (r *Rejection) Error() string {
	return r.Message
}

func Reject(reason RejectionReason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}

// Messages shown to nominators
const (
	MsgNotEligible           = "You were not active for any mode in this year, so you cannot nominate!"
	MsgInactiveForMode       = "You weren't active for this mode"
	MsgGrandAwardRequired    = "Please nominate in the Grand Award categories first!"
	MsgQuotaExceeded         = "You have already reached the max amount of nominations for this category! Please remove any current nomination(s) you may have in order to nominate anything else!"
	MsgDuplicateBeatmapset   = "You have already nominated this beatmap!"
	MsgDuplicateUser         = "You have already nominated this user!"
	MsgYearMismatch          = "Mapset is ineligible for the given MCA year!"
	MsgAlreadyReviewed       = "Cannot remove reviewed nominations, contact a member of the staff!"
	MsgRequiredHasDependents = "You cannot remove nominations in required categories if you have nominations in non-required categories!"
	MsgTypeMismatch          = "This category does not accept this kind of nominee!"
	MsgNominationNotFound    = "Could not find specified nomination!"
)
