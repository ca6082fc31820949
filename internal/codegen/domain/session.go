package domain

import "time"

// Session is the issued handle returned to the transport layer. The token is
// opaque to the client; ExpiresAt drives the cookie max-age.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Remember  bool
}
