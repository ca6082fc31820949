package domain

import "time"

// SharedArtifact is a published snippet reachable by its share id. Records
// are immutable after creation and disappear once expired; an expired
// artifact is never resurrected.
type SharedArtifact struct {
	ShareID   string    `json:"shareId"` // short URL-safe token, the public handle
	OwnerID   int64     `json:"ownerId"`
	Language  string    `json:"language"`
	Prompt    string    `json:"prompt"`
	Code      string    `json:"code"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"` // fixed at creation, never extended
}

// Expired reports whether the artifact is past its retention window.
func (a SharedArtifact) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
