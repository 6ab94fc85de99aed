package domain

import "time"

// CategoryType says which kind of candidate a category accepts
type CategoryType string

const (
	CategoryTypeBeatmapsets CategoryType = "beatmapsets"
	CategoryTypeUsers       CategoryType = "users"
)

func (t CategoryType) Valid() bool {
	return t == CategoryTypeBeatmapsets || t == CategoryTypeUsers
}

// Candidate is something that can be nominated. The set of implementations is
// closed: *Beatmapset and *UserCandidate.
type Candidate interface {
	CandidateType() CategoryType
	CandidateID() int
	candidate()
}

// Beatmapset is a content item made of several beatmaps (difficulties)
type Beatmapset struct {
	ID           int       `json:"id"`
	Artist       string    `json:"artist"`
	Title        string    `json:"title"`
	CreatorName  string    `json:"creatorName"`
	ApprovedDate time.Time `json:"approvedDate"`
	Beatmaps     []Beatmap `json:"beatmaps"`
}

// Beatmap carries the filterable attributes of one difficulty
type Beatmap struct {
	ID             int     `json:"id"`
	BeatmapsetID   int     `json:"beatmapsetId"`
	DifficultyName string  `json:"difficultyName"`
	Mode           Mode    `json:"mode"`
	HitLength      float64 `json:"hitLength"`
	BPM            float64 `json:"bpm"`
	StarRating     float64 `json:"starRating"`
	CircleSize     float64 `json:"circleSize"`
}

func (b *Beatmapset) CandidateType() CategoryType { return CategoryTypeBeatmapsets }
func (b *Beatmapset) CandidateID() int            { return b.ID }
func (b *Beatmapset) candidate()                  {}

// ApprovedYear is the UTC calendar year the set was ranked in
func (b *Beatmapset) ApprovedYear() int {
	return b.ApprovedDate.UTC().Year()
}

// UserCandidate is a person being nominated
type UserCandidate struct {
	ID        int    `json:"id"`
	OsuID     int    `json:"osuId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (u *UserCandidate) CandidateType() CategoryType { return CategoryTypeUsers }
func (u *UserCandidate) CandidateID() int            { return u.ID }
func (u *UserCandidate) candidate()                  {}
