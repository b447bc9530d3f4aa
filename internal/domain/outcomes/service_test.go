package outcomes

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockOutcomeCategoryRepo struct {
	cats map[uuid.UUID]*OutcomeCategory
}

func newMockOutcomeCategoryRepo() *mockOutcomeCategoryRepo {
	return &mockOutcomeCategoryRepo{cats: make(map[uuid.UUID]*OutcomeCategory)}
}

func (m *mockOutcomeCategoryRepo) Create(_ context.Context, c *OutcomeCategory) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.cats[c.ID] = c
	return nil
}

func (m *mockOutcomeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*OutcomeCategory, error) {
	c, ok := m.cats[id]
	if !ok {
		return nil, fmt.Errorf("category %s not found", id)
	}
	return c, nil
}

func (m *mockOutcomeCategoryRepo) List(_ context.Context) ([]*OutcomeCategory, error) {
	all := make([]*OutcomeCategory, 0, len(m.cats))
	for _, c := range m.cats {
		all = append(all, c)
	}
	return all, nil
}

type mockOutcomeRepo struct {
	outcomes map[uuid.UUID]*Outcome
}

func newMockOutcomeRepo() *mockOutcomeRepo {
	return &mockOutcomeRepo{outcomes: make(map[uuid.UUID]*Outcome)}
}

func (m *mockOutcomeRepo) Create(_ context.Context, o *Outcome) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	m.outcomes[o.ID] = o
	return nil
}

func (m *mockOutcomeRepo) GetByID(_ context.Context, id uuid.UUID) (*Outcome, error) {
	o, ok := m.outcomes[id]
	if !ok {
		return nil, fmt.Errorf("outcome %s not found", id)
	}
	return o, nil
}

func (m *mockOutcomeRepo) GetByName(_ context.Context, name string) (*Outcome, error) {
	for _, o := range m.outcomes {
		if o.Name == name {
			return o, nil
		}
	}
	return nil, fmt.Errorf("outcome %q not found", name)
}

func (m *mockOutcomeRepo) List(_ context.Context) ([]*Outcome, error) {
	all := make([]*Outcome, 0, len(m.outcomes))
	for _, o := range m.outcomes {
		all = append(all, o)
	}
	return all, nil
}

type mockTreatmentRepo struct {
	treatments map[uuid.UUID]*Treatment
}

func newMockTreatmentRepo() *mockTreatmentRepo {
	return &mockTreatmentRepo{treatments: make(map[uuid.UUID]*Treatment)}
}

func (m *mockTreatmentRepo) Create(_ context.Context, t *Treatment) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.treatments[t.ID] = t
	return nil
}

func (m *mockTreatmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Treatment, error) {
	t, ok := m.treatments[id]
	if !ok {
		return nil, fmt.Errorf("treatment %s not found", id)
	}
	return t, nil
}

func (m *mockTreatmentRepo) GetByName(_ context.Context, name string) (*Treatment, error) {
	for _, t := range m.treatments {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("treatment %q not found", name)
}

func (m *mockTreatmentRepo) List(_ context.Context, limit, offset int) ([]*Treatment, int, error) {
	all := make([]*Treatment, 0, len(m.treatments))
	for _, t := range m.treatments {
		all = append(all, t)
	}
	return all, len(all), nil
}

type mockMeasurementRepo struct {
	measurements []*OutcomeMeasurement
	avgs         []TreatmentOutcomeAvg
}

func (m *mockMeasurementRepo) Create(_ context.Context, om *OutcomeMeasurement) error {
	if om.ID == uuid.Nil {
		om.ID = uuid.New()
	}
	m.measurements = append(m.measurements, om)
	return nil
}

func (m *mockMeasurementRepo) GetByID(_ context.Context, id uuid.UUID) (*OutcomeMeasurement, error) {
	for _, om := range m.measurements {
		if om.ID == id {
			return om, nil
		}
	}
	return nil, fmt.Errorf("measurement %s not found", id)
}

func (m *mockMeasurementRepo) List(_ context.Context, f MeasurementFilter, limit, offset int) ([]*OutcomeMeasurement, int, error) {
	var out []*OutcomeMeasurement
	for _, om := range m.measurements {
		if f.OutcomeID != nil && om.OutcomeID != *f.OutcomeID {
			continue
		}
		out = append(out, om)
	}
	return out, len(out), nil
}

func (m *mockMeasurementRepo) AvgByTreatment(_ context.Context, outcomeID uuid.UUID) ([]TreatmentOutcomeAvg, error) {
	return m.avgs, nil
}

func newTestService() (*Service, *mockOutcomeRepo, *mockMeasurementRepo) {
	outcomes := newMockOutcomeRepo()
	measurements := &mockMeasurementRepo{}
	svc := NewService(newMockOutcomeCategoryRepo(), outcomes, newMockTreatmentRepo(), measurements)
	return svc, outcomes, measurements
}

func TestCreateOutcomeRequiresName(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.CreateOutcome(context.Background(), &Outcome{}); err == nil {
		t.Fatal("expected error for outcome without name")
	}
}

func TestCreateTreatmentRejectsNegativeCost(t *testing.T) {
	svc, _, _ := newTestService()
	cost := -5.0

	err := svc.CreateTreatment(context.Background(), &Treatment{Name: "Procedure", AverageCost: &cost})
	if err == nil {
		t.Fatal("expected error for negative average cost")
	}
}

func TestCreateMeasurementRequiresKnownOutcome(t *testing.T) {
	svc, outcomes, ms := newTestService()
	ctx := context.Background()

	err := svc.CreateMeasurement(ctx, &OutcomeMeasurement{OutcomeID: uuid.New(), Value: 1})
	if err == nil {
		t.Fatal("expected error for unknown outcome")
	}

	o := &Outcome{Name: "Recovery rate", HigherIsBetter: true}
	if err := outcomes.Create(ctx, o); err != nil {
		t.Fatalf("seed outcome: %v", err)
	}
	if err := svc.CreateMeasurement(ctx, &OutcomeMeasurement{OutcomeID: o.ID, Value: 0.85}); err != nil {
		t.Fatalf("CreateMeasurement: %v", err)
	}
	if len(ms.measurements) != 1 {
		t.Errorf("expected 1 stored measurement, got %d", len(ms.measurements))
	}
}

func TestCreateMeasurementRejectsNegativeSampleSize(t *testing.T) {
	svc, outcomes, _ := newTestService()
	ctx := context.Background()

	o := &Outcome{Name: "Readmission rate"}
	if err := outcomes.Create(ctx, o); err != nil {
		t.Fatalf("seed outcome: %v", err)
	}
	n := -1
	err := svc.CreateMeasurement(ctx, &OutcomeMeasurement{OutcomeID: o.ID, Value: 0.1, SampleSize: &n})
	if err == nil {
		t.Fatal("expected error for negative sample size")
	}
}

func TestTreatmentAverages(t *testing.T) {
	svc, outcomes, measurements := newTestService()
	ctx := context.Background()

	o := &Outcome{Name: "Blood pressure reduction"}
	if err := outcomes.Create(ctx, o); err != nil {
		t.Fatalf("seed outcome: %v", err)
	}
	measurements.avgs = []TreatmentOutcomeAvg{
		{TreatmentID: uuid.New(), TreatmentName: "Standard therapy", AverageCost: 150, AvgValue: 12.5, SampleCount: 3},
		{TreatmentID: uuid.New(), TreatmentName: "Extended therapy", AverageCost: 900, AvgValue: 14.0, SampleCount: 2},
	}

	avgs, err := svc.TreatmentAverages(ctx, o.ID)
	if err != nil {
		t.Fatalf("TreatmentAverages: %v", err)
	}
	if len(avgs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(avgs))
	}
	if avgs[0].TreatmentName != "Standard therapy" || avgs[0].AverageCost != 150 {
		t.Errorf("unexpected first row %+v", avgs[0])
	}

	if _, err := svc.TreatmentAverages(ctx, uuid.New()); err == nil {
		t.Error("expected error for unknown outcome")
	}
}
