package analytics

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthecon/healthecon/internal/domain/pricing"
)

// Repository reads the joined rows the analysis functions work on. It is a
// read-only view over the pricing, resources and outcomes tables.
type Repository interface {
	// MeasurementRows returns outcome measurements joined with treatment
	// cost and outcome metadata. Measurements without a treatment or whose
	// treatment has no recorded cost are excluded. Nil filters pass
	// everything.
	MeasurementRows(ctx context.Context, treatmentID, outcomeID *uuid.UUID) ([]MeasurementRow, error)
	// AllocationRows returns resource allocations joined with resource,
	// organization and department names, optionally scoped to one
	// organization.
	AllocationRows(ctx context.Context, orgID *uuid.UUID) ([]AllocationRow, error)
	// PriceStats returns per-drug price aggregates for drugs with at least
	// minPrices recorded prices.
	PriceStats(ctx context.Context, minPrices int) ([]pricing.PriceStats, error)
	// AvgPriceByRegion returns the average recorded drug price per region
	// name.
	AvgPriceByRegion(ctx context.Context) (map[string]float64, error)
	// EntityCounts returns row counts for the dashboard's headline numbers.
	EntityCounts(ctx context.Context) (map[string]int, error)
	// TotalAllocationCost sums all recorded allocation spend.
	TotalAllocationCost(ctx context.Context) (float64, error)
}
