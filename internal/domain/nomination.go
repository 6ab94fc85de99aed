package domain

import (
	"encoding/json"
	"time"
)

// Nomination is one nominator's pick of a candidate for a category
type Nomination struct {
	ID          int
	NominatorID int
	Category    *Category
	Candidate   Candidate
	IsValid     bool
	ReviewerID  *int
	CreatedAt   time.Time
}

// Locked reports whether staff has marked the nomination invalid, after which
// the nominator can no longer withdraw it
func (n *Nomination) Locked() bool {
	return !n.IsValid
}

// MarshalJSON renders the candidate under "beatmapset" or "user" like the
// nominating page expects
func (n *Nomination) MarshalJSON() ([]byte, error) {
	out := struct {
		ID          int            `json:"id"`
		NominatorID int            `json:"nominatorId"`
		Category    *CategoryInfo  `json:"category,omitempty"`
		Beatmapset  *Beatmapset    `json:"beatmapset,omitempty"`
		User        *UserCandidate `json:"user,omitempty"`
		IsValid     bool           `json:"isValid"`
		Reviewed    bool           `json:"reviewed"`
		CreatedAt   time.Time      `json:"createdAt"`
	}{
		ID:          n.ID,
		NominatorID: n.NominatorID,
		IsValid:     n.IsValid,
		Reviewed:    n.ReviewerID != nil,
		CreatedAt:   n.CreatedAt,
	}
	if n.Category != nil {
		info := n.Category.Info()
		out.Category = &info
	}
	switch c := n.Candidate.(type) {
	case *Beatmapset:
		out.Beatmapset = c
	case *UserCandidate:
		out.User = c
	}
	return json.Marshal(out)
}

// CreateNominationRequest is the body of a create call
type CreateNominationRequest struct {
	CategoryID int `json:"categoryId"`
	NomineeID  int `json:"nomineeId"`
}

// NominationList is the nominating page payload for one year
type NominationList struct {
	Nominations []*Nomination  `json:"nominations"`
	Categories  []CategoryInfo `json:"categories"`
}

// SearchOrder is the sort key of a candidate search
type SearchOrder string

const (
	SearchOrderDate     SearchOrder = "date"
	SearchOrderArtist   SearchOrder = "artist"
	SearchOrderTitle    SearchOrder = "title"
	SearchOrderUsername SearchOrder = "username"
)

// ParseSearchOrder falls back to date ordering for unknown values
func ParseSearchOrder(s string) SearchOrder {
	switch o := SearchOrder(s); o {
	case SearchOrderArtist, SearchOrderTitle, SearchOrderUsername:
		return o
	}
	return SearchOrderDate
}

// SearchPageSize is the number of candidates returned per search page
const SearchPageSize = 50

// SearchRequest scopes a candidate search to one category
type SearchRequest struct {
	CategoryID int
	Text       string
	Skip       int
	Order      SearchOrder
}

// SearchResult pairs the candidate page with the caller's nominations of that year
type SearchResult struct {
	List        []Candidate   `json:"list"`
	Nominations []*Nomination `json:"nominations"`
}
