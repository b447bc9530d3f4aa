package recommendations

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	types    TypeRepository
	recs     RecommendationRepository
	actions  ActionRepository
	insights InsightRepository
}

func NewService(types TypeRepository, recs RecommendationRepository,
	actions ActionRepository, insights InsightRepository) *Service {
	return &Service{types: types, recs: recs, actions: actions, insights: insights}
}

func (s *Service) ListTypes(ctx context.Context) ([]*RecommendationType, error) {
	return s.types.List(ctx)
}

// GetRecommendation loads a recommendation with its ordered actions.
// Recommendations and insights are written only by the analytics generator;
// this service exposes a read-and-prune surface over them.
func (s *Service) GetRecommendation(ctx context.Context, id uuid.UUID) (*Recommendation, error) {
	rec, err := s.recs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actions, err := s.actions.ListByRecommendation(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Actions = actions
	return rec, nil
}

func (s *Service) ListRecommendations(ctx context.Context, f RecommendationFilter, limit, offset int) ([]*Recommendation, int, error) {
	return s.recs.List(ctx, f, limit, offset)
}

func (s *Service) DeleteRecommendation(ctx context.Context, id uuid.UUID) error {
	return s.recs.Delete(ctx, id)
}

func (s *Service) GetInsight(ctx context.Context, id uuid.UUID) (*OptimizationInsight, error) {
	return s.insights.GetByID(ctx, id)
}

func (s *Service) ListInsights(ctx context.Context, insightType string, limit, offset int) ([]*OptimizationInsight, int, error) {
	return s.insights.List(ctx, insightType, limit, offset)
}
