package pricing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockDrugRepo struct {
	drugs map[uuid.UUID]*Drug
}

func newMockDrugRepo() *mockDrugRepo {
	return &mockDrugRepo{drugs: make(map[uuid.UUID]*Drug)}
}

func (m *mockDrugRepo) Create(_ context.Context, d *Drug) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.drugs[d.ID] = d
	return nil
}

func (m *mockDrugRepo) GetByID(_ context.Context, id uuid.UUID) (*Drug, error) {
	d, ok := m.drugs[id]
	if !ok {
		return nil, fmt.Errorf("drug %s not found", id)
	}
	return d, nil
}

func (m *mockDrugRepo) GetByName(_ context.Context, name string) (*Drug, error) {
	for _, d := range m.drugs {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("drug %q not found", name)
}

func (m *mockDrugRepo) Update(_ context.Context, d *Drug) error {
	if _, ok := m.drugs[d.ID]; !ok {
		return fmt.Errorf("drug %s not found", d.ID)
	}
	m.drugs[d.ID] = d
	return nil
}

func (m *mockDrugRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.drugs[id]; !ok {
		return fmt.Errorf("drug %s not found", id)
	}
	delete(m.drugs, id)
	return nil
}

func (m *mockDrugRepo) List(_ context.Context, limit, offset int) ([]*Drug, int, error) {
	all := make([]*Drug, 0, len(m.drugs))
	for _, d := range m.drugs {
		all = append(all, d)
	}
	return all, len(all), nil
}

type mockRegionRepo struct {
	regions map[uuid.UUID]*Region
}

func newMockRegionRepo() *mockRegionRepo {
	return &mockRegionRepo{regions: make(map[uuid.UUID]*Region)}
}

func (m *mockRegionRepo) Create(_ context.Context, r *Region) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.regions[r.ID] = r
	return nil
}

func (m *mockRegionRepo) GetByID(_ context.Context, id uuid.UUID) (*Region, error) {
	r, ok := m.regions[id]
	if !ok {
		return nil, fmt.Errorf("region %s not found", id)
	}
	return r, nil
}

func (m *mockRegionRepo) GetByName(_ context.Context, name string) (*Region, error) {
	for _, r := range m.regions {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("region %q not found", name)
}

func (m *mockRegionRepo) List(_ context.Context) ([]*Region, error) {
	all := make([]*Region, 0, len(m.regions))
	for _, r := range m.regions {
		all = append(all, r)
	}
	return all, nil
}

type mockPriceRepo struct {
	prices []*DrugPrice
	trend  []PriceTrendPoint
}

func (m *mockPriceRepo) Create(_ context.Context, p *DrugPrice) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.prices = append(m.prices, p)
	return nil
}

func (m *mockPriceRepo) GetByID(_ context.Context, id uuid.UUID) (*DrugPrice, error) {
	for _, p := range m.prices {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("price %s not found", id)
}

func (m *mockPriceRepo) List(_ context.Context, f PriceFilter, limit, offset int) ([]*DrugPrice, int, error) {
	var out []*DrugPrice
	for _, p := range m.prices {
		if f.DrugID != nil && p.DrugID != *f.DrugID {
			continue
		}
		if f.RegionID != nil && p.RegionID != *f.RegionID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockPriceRepo) StatsByDrug(_ context.Context, minCount int) ([]PriceStats, error) {
	return nil, nil
}

func (m *mockPriceRepo) TrendByDrug(_ context.Context, drugID uuid.UUID) ([]PriceTrendPoint, error) {
	return m.trend, nil
}

func (m *mockPriceRepo) AvgPriceByRegion(_ context.Context) (map[string]float64, error) {
	return nil, nil
}

type mockCategoryRepo struct {
	cats map[uuid.UUID]*DrugCategory
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{cats: make(map[uuid.UUID]*DrugCategory)}
}

func (m *mockCategoryRepo) Create(_ context.Context, c *DrugCategory) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.cats[c.ID] = c
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*DrugCategory, error) {
	c, ok := m.cats[id]
	if !ok {
		return nil, fmt.Errorf("category %s not found", id)
	}
	return c, nil
}

func (m *mockCategoryRepo) List(_ context.Context) ([]*DrugCategory, error) {
	all := make([]*DrugCategory, 0, len(m.cats))
	for _, c := range m.cats {
		all = append(all, c)
	}
	return all, nil
}

func newTestService() (*Service, *mockDrugRepo, *mockRegionRepo, *mockPriceRepo) {
	drugs := newMockDrugRepo()
	regions := newMockRegionRepo()
	prices := &mockPriceRepo{}
	return NewService(newMockCategoryRepo(), drugs, regions, prices), drugs, regions, prices
}

func TestCreateDrugRequiresName(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.CreateDrug(context.Background(), &Drug{})
	if err == nil {
		t.Fatal("expected error for drug without name")
	}
}

func TestCreateDrug(t *testing.T) {
	svc, drugs, _, _ := newTestService()

	d := &Drug{Name: "Atorvastatin"}
	if err := svc.CreateDrug(context.Background(), d); err != nil {
		t.Fatalf("CreateDrug: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected drug id to be assigned")
	}
	if len(drugs.drugs) != 1 {
		t.Errorf("expected 1 stored drug, got %d", len(drugs.drugs))
	}
}

func TestCreatePriceValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	drugID := uuid.New()
	regionID := uuid.New()
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		price DrugPrice
	}{
		{"missing drug", DrugPrice{RegionID: regionID, Price: 10, PriceDate: date}},
		{"missing region", DrugPrice{DrugID: drugID, Price: 10, PriceDate: date}},
		{"negative price", DrugPrice{DrugID: drugID, RegionID: regionID, Price: -1, PriceDate: date}},
		{"missing date", DrugPrice{DrugID: drugID, RegionID: regionID, Price: 10}},
	}
	for _, tc := range cases {
		p := tc.price
		if err := svc.CreatePrice(ctx, &p); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestCreatePriceDefaultsCurrency(t *testing.T) {
	svc, _, _, prices := newTestService()

	p := &DrugPrice{
		DrugID:    uuid.New(),
		RegionID:  uuid.New(),
		Price:     42.50,
		PriceDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := svc.CreatePrice(context.Background(), p); err != nil {
		t.Fatalf("CreatePrice: %v", err)
	}
	if p.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", p.Currency)
	}
	if len(prices.prices) != 1 {
		t.Errorf("expected 1 stored price, got %d", len(prices.prices))
	}
}

func TestPriceTrendGroupsByRegion(t *testing.T) {
	svc, drugs, _, prices := newTestService()
	ctx := context.Background()

	d := &Drug{Name: "Metformin"}
	if err := drugs.Create(ctx, d); err != nil {
		t.Fatalf("create drug: %v", err)
	}
	prices.trend = []PriceTrendPoint{
		{RegionName: "Northeast", PriceDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Price: 10},
		{RegionName: "Midwest", PriceDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Price: 12},
		{RegionName: "Northeast", PriceDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Price: 11},
	}

	trend, err := svc.PriceTrend(ctx, d.ID)
	if err != nil {
		t.Fatalf("PriceTrend: %v", err)
	}
	if trend.DrugName != "Metformin" {
		t.Errorf("expected drug name Metformin, got %q", trend.DrugName)
	}
	if len(trend.Series) != 2 {
		t.Fatalf("expected 2 region series, got %d", len(trend.Series))
	}
	if got := len(trend.Series["Northeast"]); got != 2 {
		t.Errorf("expected 2 Northeast points, got %d", got)
	}
	if got := trend.Series["Northeast"][1].Price; got != 11 {
		t.Errorf("expected second Northeast price 11, got %v", got)
	}
}

func TestPriceTrendUnknownDrug(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.PriceTrend(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown drug")
	}
}
