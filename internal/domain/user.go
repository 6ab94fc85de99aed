package domain

import "time"

// Mode is a game mode. Storyboard is a category-only mode with no play activity of its own.
type Mode string

const (
	ModeStandard   Mode = "standard"
	ModeTaiko      Mode = "taiko"
	ModeFruits     Mode = "fruits"
	ModeMania      Mode = "mania"
	ModeStoryboard Mode = "storyboard"
)

// Modes lists every mode in display order
var Modes = []Mode{ModeStandard, ModeTaiko, ModeFruits, ModeMania, ModeStoryboard}

func (m Mode) Valid() bool {
	for _, candidate := range Modes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ModeActivity is one year of activity for a mode. Records are append-only.
type ModeActivity struct {
	Mode  Mode `json:"mode"`
	Year  int  `json:"year"`
	Count int  `json:"count"`
}

// User represents an authenticated account
type User struct {
	ID           int            `json:"id"`
	OsuID        int            `json:"osuId"`
	Username     string         `json:"username"`
	AvatarURL    string         `json:"avatarUrl"`
	RegisteredAt time.Time      `json:"registeredAt"`
	Restricted   bool           `json:"restricted"`
	Activity     []ModeActivity `json:"activity,omitempty"`
}

// OsuProfile is the subset of the osu! /me payload the login flow needs
type OsuProfile struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	AvatarURL    string    `json:"avatar_url"`
	JoinDate     time.Time `json:"join_date"`
	IsRestricted bool      `json:"is_restricted"`
}

// SessionClaims are the fields carried in a session token
type SessionClaims struct {
	UserID   int    `json:"uid"`
	OsuID    int    `json:"osu_id"`
	Username string `json:"username"`
}
