package outcomes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	categories   OutcomeCategoryRepository
	outcomes     OutcomeRepository
	treatments   TreatmentRepository
	measurements MeasurementRepository
}

func NewService(categories OutcomeCategoryRepository, outcomes OutcomeRepository,
	treatments TreatmentRepository, measurements MeasurementRepository) *Service {
	return &Service{
		categories:   categories,
		outcomes:     outcomes,
		treatments:   treatments,
		measurements: measurements,
	}
}

func (s *Service) CreateCategory(ctx context.Context, c *OutcomeCategory) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.categories.Create(ctx, c)
}

func (s *Service) ListCategories(ctx context.Context) ([]*OutcomeCategory, error) {
	return s.categories.List(ctx)
}

func (s *Service) CreateOutcome(ctx context.Context, o *Outcome) error {
	if o.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.outcomes.Create(ctx, o)
}

func (s *Service) GetOutcome(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	return s.outcomes.GetByID(ctx, id)
}

func (s *Service) ListOutcomes(ctx context.Context) ([]*Outcome, error) {
	return s.outcomes.List(ctx)
}

func (s *Service) CreateTreatment(ctx context.Context, t *Treatment) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.AverageCost != nil && *t.AverageCost < 0 {
		return fmt.Errorf("average_cost must not be negative")
	}
	return s.treatments.Create(ctx, t)
}

func (s *Service) GetTreatment(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return s.treatments.GetByID(ctx, id)
}

func (s *Service) ListTreatments(ctx context.Context, limit, offset int) ([]*Treatment, int, error) {
	return s.treatments.List(ctx, limit, offset)
}

func (s *Service) CreateMeasurement(ctx context.Context, m *OutcomeMeasurement) error {
	if m.OutcomeID == uuid.Nil {
		return fmt.Errorf("outcome_id is required")
	}
	if _, err := s.outcomes.GetByID(ctx, m.OutcomeID); err != nil {
		return fmt.Errorf("outcome not found: %w", err)
	}
	if m.SampleSize != nil && *m.SampleSize < 0 {
		return fmt.Errorf("sample_size must not be negative")
	}
	return s.measurements.Create(ctx, m)
}

func (s *Service) ListMeasurements(ctx context.Context, f MeasurementFilter, limit, offset int) ([]*OutcomeMeasurement, int, error) {
	return s.measurements.List(ctx, f, limit, offset)
}

// TreatmentAverages reports, for one outcome, each treatment's average
// measured value next to its average cost. Treatments without a recorded
// cost are excluded.
func (s *Service) TreatmentAverages(ctx context.Context, outcomeID uuid.UUID) ([]TreatmentOutcomeAvg, error) {
	if _, err := s.outcomes.GetByID(ctx, outcomeID); err != nil {
		return nil, fmt.Errorf("outcome not found: %w", err)
	}
	return s.measurements.AvgByTreatment(ctx, outcomeID)
}
