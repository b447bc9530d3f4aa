package pricing

import (
	"context"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *DrugCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*DrugCategory, error)
	List(ctx context.Context) ([]*DrugCategory, error)
}

type DrugRepository interface {
	Create(ctx context.Context, d *Drug) error
	GetByID(ctx context.Context, id uuid.UUID) (*Drug, error)
	GetByName(ctx context.Context, name string) (*Drug, error)
	Update(ctx context.Context, d *Drug) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Drug, int, error)
}

type RegionRepository interface {
	Create(ctx context.Context, r *Region) error
	GetByID(ctx context.Context, id uuid.UUID) (*Region, error)
	GetByName(ctx context.Context, name string) (*Region, error)
	List(ctx context.Context) ([]*Region, error)
}

// PriceFilter narrows price listings; nil fields pass everything.
type PriceFilter struct {
	DrugID   *uuid.UUID
	RegionID *uuid.UUID
}

type PriceRepository interface {
	Create(ctx context.Context, p *DrugPrice) error
	GetByID(ctx context.Context, id uuid.UUID) (*DrugPrice, error)
	List(ctx context.Context, f PriceFilter, limit, offset int) ([]*DrugPrice, int, error)
	// StatsByDrug aggregates count/min/max/avg price per drug over all
	// recorded prices, for drugs with at least minCount observations.
	StatsByDrug(ctx context.Context, minCount int) ([]PriceStats, error)
	// TrendByDrug returns the drug's price observations joined with region
	// names, ordered by price date.
	TrendByDrug(ctx context.Context, drugID uuid.UUID) ([]PriceTrendPoint, error)
	// AvgPriceByRegion returns the average recorded price per region name.
	AvgPriceByRegion(ctx context.Context) (map[string]float64, error)
}
