package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access token payload issued by the identity provider. The
// subject is the owning account id that scopes every bill query.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// EventKind enumerates session lifecycle events.
type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

// Event is published when an account signs in or out.
type Event struct {
	Kind    EventKind
	OwnerID string
	At      time.Time
}

// Session describes a verified access token.
type Session struct {
	OwnerID   string    `json:"owner_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
