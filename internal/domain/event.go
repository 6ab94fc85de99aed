package domain

import "time"

type NominationEventType string

const (
	NominationCreated NominationEventType = "nomination.created"
	NominationDeleted NominationEventType = "nomination.deleted"
)

// NominationEvent is published after a nomination change commits
type NominationEvent struct {
	Type          NominationEventType `json:"type"`
	NominationID  int                 `json:"nominationId"`
	NominatorID   int                 `json:"nominatorId"`
	CategoryID    int                 `json:"categoryId"`
	Year          int                 `json:"year"`
	CandidateType CategoryType        `json:"candidateType,omitempty"`
	CandidateID   int                 `json:"candidateId,omitempty"`
	OccurredAt    time.Time           `json:"occurredAt"`
}
