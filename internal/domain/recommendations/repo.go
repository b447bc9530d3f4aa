package recommendations

import (
	"context"

	"github.com/google/uuid"
)

type TypeRepository interface {
	// GetOrCreate resolves a recommendation type by name, creating it when
	// it does not exist yet.
	GetOrCreate(ctx context.Context, name, description, impactArea string) (*RecommendationType, error)
	List(ctx context.Context) ([]*RecommendationType, error)
}

// RecommendationFilter narrows recommendation listings; nil fields pass
// everything.
type RecommendationFilter struct {
	TypeID         *uuid.UUID
	OrganizationID *uuid.UUID
}

type RecommendationRepository interface {
	Create(ctx context.Context, r *Recommendation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Recommendation, error)
	List(ctx context.Context, f RecommendationFilter, limit, offset int) ([]*Recommendation, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ActionRepository interface {
	Create(ctx context.Context, a *RecommendedAction) error
	ListByRecommendation(ctx context.Context, recID uuid.UUID) ([]*RecommendedAction, error)
}

type InsightRepository interface {
	Create(ctx context.Context, i *OptimizationInsight) error
	GetByID(ctx context.Context, id uuid.UUID) (*OptimizationInsight, error)
	List(ctx context.Context, insightType string, limit, offset int) ([]*OptimizationInsight, int, error)
}
