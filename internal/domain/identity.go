package domain

import (
	"github.com/google/uuid"
)

// Identity is the caller's authentication state for a single request.
// It is resolved fresh on every operation and never persisted; sign-in or
// sign-out between two calls simply yields a different Identity next time.
type Identity struct {
	Authenticated bool
	UserID        uuid.UUID
}

// Anonymous is the zero identity used when no verified user is present.
var Anonymous = Identity{}

func AuthenticatedIdentity(userID uuid.UUID) Identity {
	return Identity{Authenticated: true, UserID: userID}
}
