package dto

import (
	"time"
)

// CreateShareLinkRequest is the request body for sharing a report.
// The window selects the report to snapshot; TTL is optional.
type CreateShareLinkRequest struct {
	From       *time.Time `json:"from"`
	To         *time.Time `json:"to"`
	TTLSeconds int64      `json:"ttlSeconds"`
}

// TTL returns the requested lifetime, zero when unset.
func (r *CreateShareLinkRequest) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// ShareLinkResponse carries the opaque link token. The token is shown
// exactly once; it cannot be reconstructed from stored data.
type ShareLinkResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
