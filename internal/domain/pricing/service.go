package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	categories CategoryRepository
	drugs      DrugRepository
	regions    RegionRepository
	prices     PriceRepository
}

func NewService(cat CategoryRepository, drugs DrugRepository, regions RegionRepository, prices PriceRepository) *Service {
	return &Service{categories: cat, drugs: drugs, regions: regions, prices: prices}
}

// -- Categories --

func (s *Service) CreateCategory(ctx context.Context, c *DrugCategory) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.categories.Create(ctx, c)
}

func (s *Service) ListCategories(ctx context.Context) ([]*DrugCategory, error) {
	return s.categories.List(ctx)
}

// -- Drugs --

func (s *Service) CreateDrug(ctx context.Context, d *Drug) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.drugs.Create(ctx, d)
}

func (s *Service) GetDrug(ctx context.Context, id uuid.UUID) (*Drug, error) {
	return s.drugs.GetByID(ctx, id)
}

func (s *Service) UpdateDrug(ctx context.Context, d *Drug) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.drugs.Update(ctx, d)
}

func (s *Service) DeleteDrug(ctx context.Context, id uuid.UUID) error {
	return s.drugs.Delete(ctx, id)
}

func (s *Service) ListDrugs(ctx context.Context, limit, offset int) ([]*Drug, int, error) {
	return s.drugs.List(ctx, limit, offset)
}

// -- Regions --

func (s *Service) CreateRegion(ctx context.Context, r *Region) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.regions.Create(ctx, r)
}

func (s *Service) ListRegions(ctx context.Context) ([]*Region, error) {
	return s.regions.List(ctx)
}

// -- Prices --

func (s *Service) CreatePrice(ctx context.Context, p *DrugPrice) error {
	if p.DrugID == uuid.Nil {
		return fmt.Errorf("drug_id is required")
	}
	if p.RegionID == uuid.Nil {
		return fmt.Errorf("region_id is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if p.PriceDate.IsZero() {
		return fmt.Errorf("price_date is required")
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	return s.prices.Create(ctx, p)
}

func (s *Service) ListPrices(ctx context.Context, f PriceFilter, limit, offset int) ([]*DrugPrice, int, error) {
	return s.prices.List(ctx, f, limit, offset)
}

// PriceTrend returns a drug's price history grouped by region, ordered by
// date within each series.
func (s *Service) PriceTrend(ctx context.Context, drugID uuid.UUID) (*PriceTrend, error) {
	drug, err := s.drugs.GetByID(ctx, drugID)
	if err != nil {
		return nil, fmt.Errorf("drug not found: %w", err)
	}

	points, err := s.prices.TrendByDrug(ctx, drugID)
	if err != nil {
		return nil, err
	}

	trend := &PriceTrend{
		DrugID:   drug.ID,
		DrugName: drug.Name,
		Series:   make(map[string][]PriceTrendPoint),
	}
	for _, pt := range points {
		trend.Series[pt.RegionName] = append(trend.Series[pt.RegionName], pt)
	}
	return trend, nil
}
