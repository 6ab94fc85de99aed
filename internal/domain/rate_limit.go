package domain

import "time"

// RateLimitInfo represents rate limiting information for one user and route group
type RateLimitInfo struct {
	UserID       int           `json:"userId"`
	Group        string        `json:"group"`
	RequestCount int64         `json:"requestCount"`
	Limit        int64         `json:"limit"`
	ResetIn      time.Duration `json:"resetIn"`
	IsAllowed    bool          `json:"isAllowed"`
}
