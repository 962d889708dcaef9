package domain

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is one remote (user, trip) pair row. Anonymous favorites never
// materialize as rows; they live in the device-keyed local blob instead.
type Favorite struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	TripID    string    `db:"trip_id" json:"trip_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
