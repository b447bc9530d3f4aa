package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/healthecon/healthecon/internal/domain/outcomes"
	"github.com/healthecon/healthecon/internal/domain/pricing"
	"github.com/healthecon/healthecon/internal/domain/resources"
)

type recorder[T any] struct {
	items []T
}

func (r *recorder[T]) Create(_ context.Context, v T) error {
	r.items = append(r.items, v)
	return nil
}

type drugRecorder struct {
	drugs []*pricing.Drug
}

func (d *drugRecorder) Create(_ context.Context, drug *pricing.Drug) error {
	d.drugs = append(d.drugs, drug)
	return nil
}

func (d *drugRecorder) GetByName(_ context.Context, name string) (*pricing.Drug, error) {
	for _, drug := range d.drugs {
		if drug.Name == name {
			return drug, nil
		}
	}
	return nil, fmt.Errorf("drug %q not found", name)
}

type testStores struct {
	drugs        *drugRecorder
	prices       *recorder[*pricing.DrugPrice]
	allocations  *recorder[*resources.ResourceAllocation]
	measurements *recorder[*outcomes.OutcomeMeasurement]
}

func newTestSeeder() (*Seeder, *testStores) {
	stores := &testStores{
		drugs:        &drugRecorder{},
		prices:       &recorder[*pricing.DrugPrice]{},
		allocations:  &recorder[*resources.ResourceAllocation]{},
		measurements: &recorder[*outcomes.OutcomeMeasurement]{},
	}
	s := &Seeder{
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
		drugCategories:     &recorder[*pricing.DrugCategory]{},
		drugs:              stores.drugs,
		regions:            &recorder[*pricing.Region]{},
		prices:             stores.prices,
		organizations:      &recorder[*resources.Organization]{},
		departments:        &recorder[*resources.Department]{},
		resourceCategories: &recorder[*resources.ResourceCategory]{},
		resources:          &recorder[*resources.Resource]{},
		allocations:        stores.allocations,
		outcomeCategories:  &recorder[*outcomes.OutcomeCategory]{},
		outcomes:           &recorder[*outcomes.Outcome]{},
		treatments:         &recorder[*outcomes.Treatment]{},
		measurements:       stores.measurements,
		log:                zerolog.Nop(),
	}
	return s, stores
}

func TestRunLoadsDemoData(t *testing.T) {
	s, stores := newTestSeeder()

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(stores.drugs.drugs) != 2 {
		t.Errorf("expected 2 drugs, got %d", len(stores.drugs.drugs))
	}
	if len(stores.prices.items) != 5 {
		t.Errorf("expected 5 prices, got %d", len(stores.prices.items))
	}
	if len(stores.allocations.items) != 9 {
		t.Errorf("expected 9 allocations, got %d", len(stores.allocations.items))
	}
	if len(stores.measurements.items) != 2 {
		t.Errorf("expected 2 measurements, got %d", len(stores.measurements.items))
	}

	// The set must contain the overpriced batches the waste detector keys on.
	var outliers int
	for _, a := range stores.allocations.items {
		if a.Quantity > 0 && a.TotalCost/a.Quantity >= 400 {
			outliers++
		}
	}
	if outliers != 2 {
		t.Errorf("expected 2 high unit-cost allocations, got %d", outliers)
	}
}

func TestRunSkipsWhenAlreadySeeded(t *testing.T) {
	s, stores := newTestSeeder()

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if len(stores.drugs.drugs) != 2 {
		t.Errorf("second run duplicated drugs: got %d", len(stores.drugs.drugs))
	}
	if len(stores.prices.items) != 5 {
		t.Errorf("second run duplicated prices: got %d", len(stores.prices.items))
	}
}
