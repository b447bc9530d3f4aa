package outcomes

import (
	"context"

	"github.com/google/uuid"
)

type OutcomeCategoryRepository interface {
	Create(ctx context.Context, c *OutcomeCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*OutcomeCategory, error)
	List(ctx context.Context) ([]*OutcomeCategory, error)
}

type OutcomeRepository interface {
	Create(ctx context.Context, o *Outcome) error
	GetByID(ctx context.Context, id uuid.UUID) (*Outcome, error)
	GetByName(ctx context.Context, name string) (*Outcome, error)
	List(ctx context.Context) ([]*Outcome, error)
}

type TreatmentRepository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error)
	GetByName(ctx context.Context, name string) (*Treatment, error)
	List(ctx context.Context, limit, offset int) ([]*Treatment, int, error)
}

// MeasurementFilter narrows measurement listings; nil fields pass
// everything.
type MeasurementFilter struct {
	OutcomeID      *uuid.UUID
	TreatmentID    *uuid.UUID
	OrganizationID *uuid.UUID
}

type MeasurementRepository interface {
	Create(ctx context.Context, m *OutcomeMeasurement) error
	GetByID(ctx context.Context, id uuid.UUID) (*OutcomeMeasurement, error)
	List(ctx context.Context, f MeasurementFilter, limit, offset int) ([]*OutcomeMeasurement, int, error)
	// AvgByTreatment aggregates, for one outcome, each treatment's average
	// measured value and its average cost. Treatments with no recorded cost
	// are excluded.
	AvgByTreatment(ctx context.Context, outcomeID uuid.UUID) ([]TreatmentOutcomeAvg, error)
}
