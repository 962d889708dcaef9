package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/terravia/terravia-backend/internal/repository/ports"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add inserts the (user, trip) pair and reports whether a row was created.
// A conflicting pair is a no-op, so concurrent togglers cannot produce
// duplicates.
func (r *FavoriteRepository) Add(ctx context.Context, userID uuid.UUID, tripID string) (bool, error) {
	const query = `
		INSERT INTO favorite (user_id, trip_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, trip_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, userID, tripID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Remove deletes the (user, trip) pair and reports whether a row existed.
func (r *FavoriteRepository) Remove(ctx context.Context, userID uuid.UUID, tripID string) (bool, error) {
	const query = `
		DELETE FROM favorite
		WHERE user_id = $1 AND trip_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, userID, tripID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	const query = `
		SELECT trip_id
		FROM favorite
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	tripIDs := make([]string, 0)
	if err := r.db.SelectContext(ctx, &tripIDs, query, userID); err != nil {
		return nil, err
	}
	return tripIDs, nil
}

func (r *FavoriteRepository) CountByTrip(ctx context.Context, tripID string) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM favorite
		WHERE trip_id = $1
	`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, tripID); err != nil {
		return 0, err
	}
	return count, nil
}

var _ ports.FavoriteRepository = (*FavoriteRepository)(nil)
