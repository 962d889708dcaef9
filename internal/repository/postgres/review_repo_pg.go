package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/terravia/terravia-backend/internal/domain"
	"github.com/terravia/terravia-backend/internal/repository/ports"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// reviewRow carries the images column as raw jsonb so one INSERT commits the
// whole record, image URLs included.
type reviewRow struct {
	ID        uuid.UUID       `db:"id"`
	TripID    string          `db:"trip_id"`
	Stars     int             `db:"stars"`
	Comment   string          `db:"review_comment"`
	Images    json.RawMessage `db:"images"`
	Verified  bool            `db:"verified"`
	UserID    *uuid.UUID      `db:"user_id"`
	Name      *string         `db:"name"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	const query = `
		INSERT INTO review (trip_id, stars, review_comment, images, verified, user_id, name)
		VALUES (:trip_id, :stars, :review_comment, :images, :verified, :user_id, :name)
		RETURNING id, trip_id, stars, review_comment, images, verified, user_id, name, created_at
	`

	images := review.Images
	if images == nil {
		images = []string{}
	}
	encoded, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}

	args := map[string]any{
		"trip_id":        review.TripID,
		"stars":          review.Stars,
		"review_comment": review.Comment,
		"images":         encoded,
		"verified":       review.Verified,
		"user_id":        review.UserID,
		"name":           review.Name,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored reviewRow
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return stored.toDomain()
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, sql.ErrNoRows
}

func (r *ReviewRepository) ListByTrip(ctx context.Context, tripID string) ([]domain.Review, error) {
	const query = `
		SELECT id, trip_id, stars, review_comment, images, verified, user_id, name, created_at
		FROM review
		WHERE trip_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryxContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var row reviewRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		review, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, rows.Err()
}

func (row reviewRow) toDomain() (*domain.Review, error) {
	images := make([]string, 0)
	if len(row.Images) > 0 {
		if err := json.Unmarshal(row.Images, &images); err != nil {
			return nil, err
		}
	}
	return &domain.Review{
		ID:        row.ID,
		TripID:    row.TripID,
		Stars:     row.Stars,
		Comment:   row.Comment,
		Images:    images,
		Verified:  row.Verified,
		UserID:    row.UserID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
	}, nil
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)
