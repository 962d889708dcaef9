package ports

import (
	"context"

	"github.com/terravia/terravia-backend/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Review, error)
}
