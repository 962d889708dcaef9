package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is the durable result of one submission. Exactly one of UserID or
// Name is set: UserID when the submitter was authenticated (Verified true),
// Name when the submitter was anonymous. Records are never mutated after
// creation.
type Review struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	TripID    string     `db:"trip_id" json:"trip_id"`
	Stars     int        `db:"stars" json:"stars"`
	Comment   string     `db:"review_comment" json:"review_comment"`
	Images    []string   `json:"images"`
	Verified  bool       `db:"verified" json:"verified"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name      *string    `db:"name" json:"name,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
