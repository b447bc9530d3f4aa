package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/healthecon/healthecon/internal/domain/outcomes"
	"github.com/healthecon/healthecon/internal/domain/pricing"
	"github.com/healthecon/healthecon/internal/domain/resources"
	"github.com/healthecon/healthecon/internal/platform/db"
)

// sentinelDrug marks an already-seeded database; Run is a no-op when it
// exists.
const sentinelDrug = "Cardiostatin"

// creator is the narrow persistence surface the seeder needs from most
// repositories.
type creator[T any] interface {
	Create(ctx context.Context, v T) error
}

type drugStore interface {
	Create(ctx context.Context, d *pricing.Drug) error
	GetByName(ctx context.Context, name string) (*pricing.Drug, error)
}

// Seeder loads a small demo data set, sized so the dashboard, the price
// trend view and all three recommendation sub-generators have material to
// work with.
type Seeder struct {
	runTx func(ctx context.Context, fn func(context.Context) error) error

	drugCategories creator[*pricing.DrugCategory]
	drugs          drugStore
	regions        creator[*pricing.Region]
	prices         creator[*pricing.DrugPrice]

	organizations      creator[*resources.Organization]
	departments        creator[*resources.Department]
	resourceCategories creator[*resources.ResourceCategory]
	resources          creator[*resources.Resource]
	allocations        creator[*resources.ResourceAllocation]

	outcomeCategories creator[*outcomes.OutcomeCategory]
	outcomes          creator[*outcomes.Outcome]
	treatments        creator[*outcomes.Treatment]
	measurements      creator[*outcomes.OutcomeMeasurement]

	log zerolog.Logger
}

func NewSeeder(pool *pgxpool.Pool,
	drugCategories pricing.CategoryRepository, drugs pricing.DrugRepository,
	regions pricing.RegionRepository, prices pricing.PriceRepository,
	orgs resources.OrganizationRepository, departments resources.DepartmentRepository,
	resourceCategories resources.ResourceCategoryRepository, resourceCatalog resources.ResourceRepository,
	allocations resources.AllocationRepository,
	outcomeCategories outcomes.OutcomeCategoryRepository, outcomeCatalog outcomes.OutcomeRepository,
	treatments outcomes.TreatmentRepository, measurements outcomes.MeasurementRepository,
	log zerolog.Logger) *Seeder {
	return &Seeder{
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
		drugCategories:     drugCategories,
		drugs:              drugs,
		regions:            regions,
		prices:             prices,
		organizations:      orgs,
		departments:        departments,
		resourceCategories: resourceCategories,
		resources:          resourceCatalog,
		allocations:        allocations,
		outcomeCategories:  outcomeCategories,
		outcomes:           outcomeCatalog,
		treatments:         treatments,
		measurements:       measurements,
		log:                log,
	}
}

// Run loads the demo set in one transaction. A second run is a no-op.
func (s *Seeder) Run(ctx context.Context) error {
	if _, err := s.drugs.GetByName(ctx, sentinelDrug); err == nil {
		s.log.Info().Msg("demo data already present, skipping")
		return nil
	}
	if err := s.runTx(ctx, s.load); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	s.log.Info().Msg("demo data loaded")
	return nil
}

func (s *Seeder) load(ctx context.Context) error {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	cardio := &pricing.DrugCategory{Name: "Cardiovascular", Description: ptr("Heart and circulatory system drugs")}
	if err := s.drugCategories.Create(ctx, cardio); err != nil {
		return fmt.Errorf("drug category: %w", err)
	}

	northeast := &pricing.Region{Name: "Northeast", Country: ptr("USA"), Code: ptr("NE")}
	southwest := &pricing.Region{Name: "Southwest", Country: ptr("USA"), Code: ptr("SW")}
	for _, r := range []*pricing.Region{northeast, southwest} {
		if err := s.regions.Create(ctx, r); err != nil {
			return fmt.Errorf("region %s: %w", r.Name, err)
		}
	}

	cardiostatin := &pricing.Drug{
		Name:         sentinelDrug,
		GenericName:  ptr("atorvastatin calcium"),
		Manufacturer: ptr("Meridian Pharma"),
		CategoryID:   &cardio.ID,
	}
	neurozil := &pricing.Drug{
		Name:         "Neurozil",
		GenericName:  ptr("donepezil hydrochloride"),
		Manufacturer: ptr("Halcyon Labs"),
		CategoryID:   &cardio.ID,
	}
	for _, d := range []*pricing.Drug{cardiostatin, neurozil} {
		if err := s.drugs.Create(ctx, d); err != nil {
			return fmt.Errorf("drug %s: %w", d.Name, err)
		}
	}

	// Cardiostatin prices spread wide enough to trip the variance check;
	// Neurozil's stay flat.
	demoPrices := []*pricing.DrugPrice{
		{DrugID: cardiostatin.ID, RegionID: northeast.ID, Price: 120, Currency: "USD", PriceDate: base},
		{DrugID: cardiostatin.ID, RegionID: southwest.ID, Price: 480, Currency: "USD", PriceDate: base.AddDate(0, 1, 0)},
		{DrugID: cardiostatin.ID, RegionID: northeast.ID, Price: 210, Currency: "USD", PriceDate: base.AddDate(0, 2, 0)},
		{DrugID: neurozil.ID, RegionID: northeast.ID, Price: 55, Currency: "USD", PriceDate: base},
		{DrugID: neurozil.ID, RegionID: southwest.ID, Price: 60, Currency: "USD", PriceDate: base.AddDate(0, 1, 0)},
	}
	for _, p := range demoPrices {
		p.Source = ptr("demo data")
		if err := s.prices.Create(ctx, p); err != nil {
			return fmt.Errorf("price: %w", err)
		}
	}

	riverside := &resources.Organization{
		Name:     "Riverside Health System",
		Type:     ptr("hospital"),
		City:     ptr("Hartford"),
		State:    ptr("CT"),
		Country:  ptr("USA"),
		RegionID: &northeast.ID,
	}
	if err := s.organizations.Create(ctx, riverside); err != nil {
		return fmt.Errorf("organization: %w", err)
	}

	cardiology := &resources.Department{Name: "Cardiology", OrganizationID: riverside.ID, Budget: ptr(2500000.0), StaffCount: ptr(42)}
	radiology := &resources.Department{Name: "Radiology", OrganizationID: riverside.ID, Budget: ptr(1800000.0), StaffCount: ptr(28)}
	for _, d := range []*resources.Department{cardiology, radiology} {
		if err := s.departments.Create(ctx, d); err != nil {
			return fmt.Errorf("department %s: %w", d.Name, err)
		}
	}

	supplies := &resources.ResourceCategory{Name: "Medical Supplies"}
	if err := s.resourceCategories.Create(ctx, supplies); err != nil {
		return fmt.Errorf("resource category: %w", err)
	}

	ivKits := &resources.Resource{Name: "IV Kits", CategoryID: &supplies.ID, UnitCost: ptr(100.0), UnitType: ptr("kit")}
	contrast := &resources.Resource{Name: "Contrast Media", CategoryID: &supplies.ID, UnitCost: ptr(50.0), UnitType: ptr("dose")}
	for _, r := range []*resources.Resource{ivKits, contrast} {
		if err := s.resources.Create(ctx, r); err != nil {
			return fmt.Errorf("resource %s: %w", r.Name, err)
		}
	}

	// Cardiology carries one overpriced batch of each supply, so the waste
	// detector flags two allocations in the same department.
	fy := ptr("2025")
	demoAllocations := []*resources.ResourceAllocation{
		{OrganizationID: &riverside.ID, DepartmentID: &cardiology.ID, ResourceID: ivKits.ID, Quantity: 10, TotalCost: 1000, AllocationDate: base},
		{OrganizationID: &riverside.ID, DepartmentID: &cardiology.ID, ResourceID: ivKits.ID, Quantity: 10, TotalCost: 1000, AllocationDate: base.AddDate(0, 1, 0)},
		{OrganizationID: &riverside.ID, DepartmentID: &cardiology.ID, ResourceID: ivKits.ID, Quantity: 10, TotalCost: 1000, AllocationDate: base.AddDate(0, 2, 0)},
		{OrganizationID: &riverside.ID, DepartmentID: &cardiology.ID, ResourceID: ivKits.ID, Quantity: 10, TotalCost: 5000, AllocationDate: base.AddDate(0, 3, 0)},
		{OrganizationID: &riverside.ID, DepartmentID: &radiology.ID, ResourceID: ivKits.ID, Quantity: 5, TotalCost: 550, AllocationDate: base.AddDate(0, 1, 0)},
		{OrganizationID: &riverside.ID, DepartmentID: &cardiology.ID, ResourceID: contrast.ID, Quantity: 20, TotalCost: 1000, AllocationDate: base},
		{OrganizationID: &riverside.ID, DepartmentID: &cardiology.ID, ResourceID: contrast.ID, Quantity: 20, TotalCost: 1000, AllocationDate: base.AddDate(0, 1, 0)},
		{OrganizationID: &riverside.ID, DepartmentID: &cardiology.ID, ResourceID: contrast.ID, Quantity: 20, TotalCost: 1000, AllocationDate: base.AddDate(0, 2, 0)},
		{OrganizationID: &riverside.ID, DepartmentID: &cardiology.ID, ResourceID: contrast.ID, Quantity: 20, TotalCost: 8000, AllocationDate: base.AddDate(0, 3, 0)},
	}
	for _, a := range demoAllocations {
		a.FiscalYear = fy
		if err := s.allocations.Create(ctx, a); err != nil {
			return fmt.Errorf("allocation: %w", err)
		}
	}

	effectiveness := &outcomes.OutcomeCategory{Name: "Clinical Effectiveness"}
	if err := s.outcomeCategories.Create(ctx, effectiveness); err != nil {
		return fmt.Errorf("outcome category: %w", err)
	}

	bpReduction := &outcomes.Outcome{
		Name:            "Blood Pressure Reduction",
		CategoryID:      &effectiveness.ID,
		MeasurementUnit: ptr("mmHg"),
		HigherIsBetter:  true,
	}
	if err := s.outcomes.Create(ctx, bpReduction); err != nil {
		return fmt.Errorf("outcome: %w", err)
	}

	cardioTherapy := &outcomes.Treatment{Name: "Cardiostatin Therapy", DrugID: &cardiostatin.ID, AverageCost: ptr(150.0)}
	neuroTherapy := &outcomes.Treatment{Name: "Neurozil Therapy", DrugID: &neurozil.ID, AverageCost: ptr(900.0)}
	for _, tr := range []*outcomes.Treatment{cardioTherapy, neuroTherapy} {
		if err := s.treatments.Create(ctx, tr); err != nil {
			return fmt.Errorf("treatment %s: %w", tr.Name, err)
		}
	}

	// The cost/value gap between the two therapies clears the 1.5x ratio
	// spread the outcome sub-generator looks for.
	measurementDate := base.AddDate(0, 2, 0)
	demoMeasurements := []*outcomes.OutcomeMeasurement{
		{OutcomeID: bpReduction.ID, TreatmentID: &cardioTherapy.ID, OrganizationID: &riverside.ID, Value: 30, SampleSize: ptr(120)},
		{OutcomeID: bpReduction.ID, TreatmentID: &neuroTherapy.ID, OrganizationID: &riverside.ID, Value: 20, SampleSize: ptr(95)},
	}
	for _, m := range demoMeasurements {
		m.MeasurementDate = &measurementDate
		m.Source = ptr("demo data")
		if err := s.measurements.Create(ctx, m); err != nil {
			return fmt.Errorf("measurement: %w", err)
		}
	}

	return nil
}

func ptr[T any](v T) *T { return &v }
