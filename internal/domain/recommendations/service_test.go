package recommendations

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type mockTypeRepo struct {
	types map[string]*RecommendationType
}

func newMockTypeRepo() *mockTypeRepo {
	return &mockTypeRepo{types: make(map[string]*RecommendationType)}
}

func (m *mockTypeRepo) GetOrCreate(_ context.Context, name, description, impactArea string) (*RecommendationType, error) {
	if t, ok := m.types[name]; ok {
		return t, nil
	}
	t := &RecommendationType{ID: uuid.New(), Name: name, Description: &description, ImpactArea: &impactArea}
	m.types[name] = t
	return t, nil
}

func (m *mockTypeRepo) List(_ context.Context) ([]*RecommendationType, error) {
	all := make([]*RecommendationType, 0, len(m.types))
	for _, t := range m.types {
		all = append(all, t)
	}
	return all, nil
}

type mockRecommendationRepo struct {
	recs map[uuid.UUID]*Recommendation
}

func newMockRecommendationRepo() *mockRecommendationRepo {
	return &mockRecommendationRepo{recs: make(map[uuid.UUID]*Recommendation)}
}

func (m *mockRecommendationRepo) Create(_ context.Context, r *Recommendation) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.recs[r.ID] = r
	return nil
}

func (m *mockRecommendationRepo) GetByID(_ context.Context, id uuid.UUID) (*Recommendation, error) {
	r, ok := m.recs[id]
	if !ok {
		return nil, fmt.Errorf("recommendation %s not found", id)
	}
	return r, nil
}

func (m *mockRecommendationRepo) List(_ context.Context, f RecommendationFilter, limit, offset int) ([]*Recommendation, int, error) {
	all := make([]*Recommendation, 0, len(m.recs))
	for _, r := range m.recs {
		if f.TypeID != nil && (r.TypeID == nil || *r.TypeID != *f.TypeID) {
			continue
		}
		all = append(all, r)
	}
	return all, len(all), nil
}

func (m *mockRecommendationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.recs[id]; !ok {
		return fmt.Errorf("recommendation %s not found", id)
	}
	delete(m.recs, id)
	return nil
}

type mockActionRepo struct {
	actions []*RecommendedAction
}

func (m *mockActionRepo) Create(_ context.Context, a *RecommendedAction) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.actions = append(m.actions, a)
	return nil
}

func (m *mockActionRepo) ListByRecommendation(_ context.Context, recID uuid.UUID) ([]*RecommendedAction, error) {
	var out []*RecommendedAction
	for _, a := range m.actions {
		if a.RecommendationID == recID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockInsightRepo struct {
	insights []*OptimizationInsight
}

func (m *mockInsightRepo) Create(_ context.Context, i *OptimizationInsight) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	m.insights = append(m.insights, i)
	return nil
}

func (m *mockInsightRepo) GetByID(_ context.Context, id uuid.UUID) (*OptimizationInsight, error) {
	for _, i := range m.insights {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, fmt.Errorf("insight %s not found", id)
}

func (m *mockInsightRepo) List(_ context.Context, insightType string, limit, offset int) ([]*OptimizationInsight, int, error) {
	var out []*OptimizationInsight
	for _, i := range m.insights {
		if insightType != "" && (i.InsightType == nil || *i.InsightType != insightType) {
			continue
		}
		out = append(out, i)
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRecommendationRepo, *mockActionRepo, *mockInsightRepo) {
	recs := newMockRecommendationRepo()
	actions := &mockActionRepo{}
	insights := &mockInsightRepo{}
	return NewService(newMockTypeRepo(), recs, actions, insights), recs, actions, insights
}

func TestGetRecommendationIncludesActions(t *testing.T) {
	svc, recs, actions, _ := newTestService()
	ctx := context.Background()

	rec := &Recommendation{
		Title:       "Review imaging utilization",
		Description: "MRI unit costs exceed peer benchmark",
	}
	if err := recs.Create(ctx, rec); err != nil {
		t.Fatalf("seed recommendation: %v", err)
	}
	for i, text := range []string{"Pull utilization report", "Compare against peers"} {
		a := &RecommendedAction{RecommendationID: rec.ID, Action: text, SortOrder: i + 1}
		if err := actions.Create(ctx, a); err != nil {
			t.Fatalf("seed action: %v", err)
		}
	}

	got, err := svc.GetRecommendation(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetRecommendation: %v", err)
	}
	if len(got.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(got.Actions))
	}
	if got.Actions[0].Action != "Pull utilization report" {
		t.Errorf("unexpected first action %q", got.Actions[0].Action)
	}
}

func TestGetInsight(t *testing.T) {
	svc, _, _, insights := newTestService()
	ctx := context.Background()

	typ := "pricing"
	i := &OptimizationInsight{
		Title:       "Wide price spread",
		Description: "Price range exceeds half the average",
		InsightType: &typ,
		Data:        map[string]interface{}{"price_range": 12.5},
	}
	if err := insights.Create(ctx, i); err != nil {
		t.Fatalf("seed insight: %v", err)
	}

	got, err := svc.GetInsight(ctx, i.ID)
	if err != nil {
		t.Fatalf("GetInsight: %v", err)
	}
	if got.Title != "Wide price spread" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if _, err := svc.GetInsight(ctx, uuid.New()); err == nil {
		t.Error("expected error for unknown insight")
	}
}

// Recommendations and insights are produced by the analytics generator;
// the HTTP surface must not accept hand-written ones.
func TestRecommendationRoutesAreReadOnly(t *testing.T) {
	e := echo.New()
	svc, _, _, _ := newTestService()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))

	for _, path := range []string{"/api/v1/recommendations", "/api/v1/insights"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: expected 405, got %d", path, rec.Code)
		}
	}
}
