package analytics

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthecon/healthecon/internal/domain/recommendations"
)

// Dashboard is the headline summary the reporting UI renders first.
type Dashboard struct {
	Counts              map[string]int     `json:"counts"`
	AvgPriceByRegion    map[string]float64 `json:"avg_price_by_region"`
	TotalAllocationCost float64            `json:"total_allocation_cost"`
}

type Service struct {
	repo Repository
	gen  *Generator
}

func NewService(repo Repository, gen *Generator) *Service {
	return &Service{repo: repo, gen: gen}
}

// CostEffectiveness computes ratios over stored measurements, optionally
// filtered by treatment and outcome.
func (s *Service) CostEffectiveness(ctx context.Context, treatmentID, outcomeID *uuid.UUID) ([]CostEffectivenessRatio, error) {
	rows, err := s.repo.MeasurementRows(ctx, treatmentID, outcomeID)
	if err != nil {
		return nil, err
	}
	return ComputeRatios(rows), nil
}

// Waste flags high-unit-cost allocations, optionally scoped to one
// organization.
func (s *Service) Waste(ctx context.Context, orgID *uuid.UUID) ([]WasteItem, error) {
	rows, err := s.repo.AllocationRows(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return IdentifyWaste(rows), nil
}

// GenerateRecommendations runs the full generation batch.
func (s *Service) GenerateRecommendations(ctx context.Context, orgID *uuid.UUID) ([]*recommendations.Recommendation, error) {
	return s.gen.Generate(ctx, orgID)
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.repo.EntityCounts(ctx)
	if err != nil {
		return nil, err
	}
	avgByRegion, err := s.repo.AvgPriceByRegion(ctx)
	if err != nil {
		return nil, err
	}
	totalAllocation, err := s.repo.TotalAllocationCost(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Counts:              counts,
		AvgPriceByRegion:    avgByRegion,
		TotalAllocationCost: totalAllocation,
	}, nil
}
