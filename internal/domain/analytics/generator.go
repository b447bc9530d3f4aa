package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/healthecon/healthecon/internal/domain/recommendations"
	"github.com/healthecon/healthecon/internal/platform/db"
)

const (
	// priceVariationThreshold is the minimum (max-min)/avg spread before a
	// drug's pricing is worth a recommendation.
	priceVariationThreshold = 0.5
	// minPricesForVariance: a single price observation has no spread.
	minPricesForVariance = 2
	// minWasteItemsPerGroup: one flagged allocation may be an outlier; two
	// or more in the same department suggest a pattern.
	minWasteItemsPerGroup = 2
	// outcomeRatioMultiplier is how much worse the worst treatment's ratio
	// must be than the best before the gap is actionable.
	outcomeRatioMultiplier = 1.5
	// assumedPatientCount scales per-treatment savings to an estimated
	// annual impact.
	assumedPatientCount = 100
)

// TxRunner executes fn atomically; every repository write inside fn shares
// one transaction.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

// Generator materializes Recommendation, RecommendedAction and
// OptimizationInsight rows from the stored pricing, allocation and outcome
// data. Each recommendation is written in its own transaction, so one bad
// unit never blocks the rest of the batch. Reruns append a fresh batch;
// nothing de-duplicates against earlier runs.
type Generator struct {
	repo     Repository
	types    recommendations.TypeRepository
	recs     recommendations.RecommendationRepository
	actions  recommendations.ActionRepository
	insights recommendations.InsightRepository
	runTx    TxRunner
	log      zerolog.Logger
}

func NewGenerator(pool *pgxpool.Pool, repo Repository, types recommendations.TypeRepository,
	recs recommendations.RecommendationRepository, actions recommendations.ActionRepository,
	insights recommendations.InsightRepository, log zerolog.Logger) *Generator {
	return &Generator{
		repo:     repo,
		types:    types,
		recs:     recs,
		actions:  actions,
		insights: insights,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
		log: log,
	}
}

// Generate runs the price, resource and outcome sub-generators in that
// order and returns every recommendation created, in creation order.
func (g *Generator) Generate(ctx context.Context, orgID *uuid.UUID) ([]*recommendations.Recommendation, error) {
	var all []*recommendations.Recommendation

	priceRecs, err := g.generatePriceRecommendations(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("price recommendations: %w", err)
	}
	all = append(all, priceRecs...)

	resourceRecs, err := g.generateResourceRecommendations(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("resource recommendations: %w", err)
	}
	all = append(all, resourceRecs...)

	outcomeRecs, err := g.generateOutcomeRecommendations(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("outcome recommendations: %w", err)
	}
	all = append(all, outcomeRecs...)

	g.log.Info().Int("count", len(all)).Msg("recommendation generation finished")
	return all, nil
}

func (g *Generator) generatePriceRecommendations(ctx context.Context, orgID *uuid.UUID) ([]*recommendations.Recommendation, error) {
	stats, err := g.repo.PriceStats(ctx, minPricesForVariance)
	if err != nil {
		return nil, err
	}

	var created []*recommendations.Recommendation
	for _, s := range stats {
		if s.AvgPrice <= 0 {
			continue
		}
		priceRange := s.MaxPrice - s.MinPrice
		variation := priceRange / s.AvgPrice
		if variation <= priceVariationThreshold {
			continue
		}

		confidence := "Medium"
		if priceRange > s.AvgPrice {
			confidence = "High"
		}
		rec := &recommendations.Recommendation{
			Title: fmt.Sprintf("Optimize procurement for %s", s.DrugName),
			Description: fmt.Sprintf(
				"Significant price variance detected for %s. Prices range from %.2f to %.2f (%.0f%% variation).",
				s.DrugName, s.MinPrice, s.MaxPrice, variation*100),
			OrganizationID:           orgID,
			EstimatedImpact:          ptr(priceRange),
			ImpactUnit:               ptr("$ per unit"),
			ConfidenceLevel:          &confidence,
			ImplementationDifficulty: ptr("Low"),
		}
		actions := []*recommendations.RecommendedAction{
			{
				Action:          fmt.Sprintf("Identify lowest-cost supplier for %s", s.DrugName),
				ResponsibleRole: ptr("Procurement Manager"),
				Timeframe:       ptr("1-2 weeks"),
			},
			{
				Action:          "Negotiate with current suppliers using price benchmark data",
				ResponsibleRole: ptr("Procurement Manager"),
				Timeframe:       ptr("2-4 weeks"),
			},
		}
		insight := &recommendations.OptimizationInsight{
			Title:       fmt.Sprintf("Price disparity for %s", s.DrugName),
			Description: fmt.Sprintf("Analysis has identified significant price variation for %s across suppliers.", s.DrugName),
			InsightType: ptr("pricing"),
			Data: map[string]interface{}{
				"drug_id":       s.DrugID.String(),
				"drug_name":     s.DrugName,
				"min_price":     s.MinPrice,
				"max_price":     s.MaxPrice,
				"avg_price":     s.AvgPrice,
				"variation_pct": variation,
			},
			OrganizationID: orgID,
		}

		if err := g.persist(ctx, "Price Optimization",
			"Recommendations for optimizing pharmaceutical pricing", "cost",
			rec, actions, insight); err != nil {
			g.log.Warn().Err(err).Str("drug", s.DrugName).Msg("price recommendation failed, skipping")
			continue
		}
		created = append(created, rec)
	}
	return created, nil
}

// wasteGroupKey groups flagged allocations by organization and department
// id. uuid.Nil stands in for unscoped allocations.
type wasteGroupKey struct {
	orgID  uuid.UUID
	deptID uuid.UUID
}

func (g *Generator) generateResourceRecommendations(ctx context.Context, orgID *uuid.UUID) ([]*recommendations.Recommendation, error) {
	rows, err := g.repo.AllocationRows(ctx, orgID)
	if err != nil {
		return nil, err
	}
	items := IdentifyWaste(rows)

	groups := make(map[wasteGroupKey][]WasteItem)
	var order []wasteGroupKey
	for _, item := range items {
		key := wasteGroupKey{}
		if item.OrganizationID != nil {
			key.orgID = *item.OrganizationID
		}
		if item.DepartmentID != nil {
			key.deptID = *item.DepartmentID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	var created []*recommendations.Recommendation
	for _, key := range order {
		group := groups[key]
		if len(group) < minWasteItemsPerGroup {
			continue
		}
		var totalExcess float64
		for _, item := range group {
			totalExcess += item.ExcessCost
		}
		if totalExcess <= 0 {
			continue
		}

		scope := "General"
		if name := group[0].DepartmentName; name != nil {
			scope = *name
		} else if name := group[0].OrganizationName; name != nil {
			scope = *name
		}

		rec := &recommendations.Recommendation{
			Title: fmt.Sprintf("Optimize resource allocation in %s", scope),
			Description: fmt.Sprintf(
				"Identified potential excess spending of $%.2f across %d resource categories.",
				totalExcess, len(group)),
			OrganizationID:           group[0].OrganizationID,
			DepartmentID:             group[0].DepartmentID,
			EstimatedImpact:          ptr(totalExcess),
			ImpactUnit:               ptr("$"),
			ConfidenceLevel:          ptr("Medium"),
			ImplementationDifficulty: ptr("Medium"),
			ImplementationTime:       ptr("Medium-term"),
		}
		actions := []*recommendations.RecommendedAction{
			{
				Action:          "Review procurement practices for identified resources",
				ResponsibleRole: ptr("Department Manager"),
				Timeframe:       ptr("2-4 weeks"),
			},
			{
				Action:          "Consolidate purchasing to leverage volume discounts",
				ResponsibleRole: ptr("Procurement Manager"),
				Timeframe:       ptr("1-3 months"),
			},
		}
		// group is already sorted by excess cost, worst first
		top := group
		if len(top) > 3 {
			top = top[:3]
		}
		for _, item := range top {
			actions = append(actions, &recommendations.RecommendedAction{
				Action: fmt.Sprintf("Optimize procurement of %s (potential savings: $%.2f)",
					item.Resource, item.ExcessCost),
				ResponsibleRole: ptr("Resource Manager"),
				Timeframe:       ptr("1-2 months"),
			})
		}

		resourceData := make([]interface{}, 0, len(group))
		for _, item := range group {
			resourceData = append(resourceData, map[string]interface{}{
				"name":        item.Resource,
				"excess_cost": item.ExcessCost,
			})
		}
		insight := &recommendations.OptimizationInsight{
			Title: fmt.Sprintf("Resource allocation inefficiencies in %s", scope),
			Description: fmt.Sprintf(
				"Analysis has identified potential excess spending of $%.2f across multiple resource categories.",
				totalExcess),
			InsightType: ptr("resource"),
			Data: map[string]interface{}{
				"total_excess_cost": totalExcess,
				"resource_count":    len(group),
				"resources":         resourceData,
			},
			OrganizationID: group[0].OrganizationID,
		}

		if err := g.persist(ctx, "Resource Optimization",
			"Recommendations for optimizing resource allocation", "efficiency",
			rec, actions, insight); err != nil {
			g.log.Warn().Err(err).Str("scope", scope).Msg("resource recommendation failed, skipping")
			continue
		}
		created = append(created, rec)
	}
	return created, nil
}

func (g *Generator) generateOutcomeRecommendations(ctx context.Context, orgID *uuid.UUID) ([]*recommendations.Recommendation, error) {
	rows, err := g.repo.MeasurementRows(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	ratios := ComputeRatios(rows)

	// ratios are sorted ascending, so each group keeps best-first order
	groups := make(map[string][]CostEffectivenessRatio)
	var order []string
	for _, r := range ratios {
		if _, seen := groups[r.Outcome]; !seen {
			order = append(order, r.Outcome)
		}
		groups[r.Outcome] = append(groups[r.Outcome], r)
	}
	sort.Strings(order)

	var created []*recommendations.Recommendation
	for _, outcome := range order {
		group := groups[outcome]
		if len(group) < 2 {
			continue
		}
		best, worst := group[0], group[len(group)-1]
		if worst.Ratio <= best.Ratio*outcomeRatioMultiplier {
			continue
		}
		if orgID != nil && !anyForOrganization(group, *orgID) {
			continue
		}

		potentialSavings := (worst.Cost - best.Cost) * assumedPatientCount
		rec := &recommendations.Recommendation{
			Title: fmt.Sprintf("Optimize treatment selection for %s", outcome),
			Description: fmt.Sprintf(
				"Significant variation in cost-effectiveness detected for %s treatments. %s provides better value than %s.",
				outcome, best.Treatment, worst.Treatment),
			OrganizationID:           orgID,
			EstimatedImpact:          ptr(potentialSavings),
			ImpactUnit:               ptr("$"),
			ConfidenceLevel:          ptr("Medium"),
			ImplementationDifficulty: ptr("Medium"),
			ImplementationTime:       ptr("Medium-term"),
		}
		actions := []*recommendations.RecommendedAction{
			{
				Action:          fmt.Sprintf("Review clinical protocols for %s treatments", outcome),
				ResponsibleRole: ptr("Clinical Director"),
				Timeframe:       ptr("1-2 months"),
			},
			{
				Action: fmt.Sprintf("Evaluate switching from %s to %s where clinically appropriate",
					worst.Treatment, best.Treatment),
				ResponsibleRole: ptr("Medical Committee"),
				Timeframe:       ptr("2-3 months"),
			},
		}
		insight := &recommendations.OptimizationInsight{
			Title: fmt.Sprintf("Treatment optimization opportunity for %s", outcome),
			Description: fmt.Sprintf(
				"Analysis has identified significant cost-effectiveness variation among treatments for %s.", outcome),
			InsightType: ptr("outcome"),
			Data: map[string]interface{}{
				"outcome": outcome,
				"best_treatment": map[string]interface{}{
					"name":          best.Treatment,
					"cost":          best.Cost,
					"effectiveness": best.Measurement,
					"ratio":         best.Ratio,
				},
				"worst_treatment": map[string]interface{}{
					"name":          worst.Treatment,
					"cost":          worst.Cost,
					"effectiveness": worst.Measurement,
					"ratio":         worst.Ratio,
				},
				"potential_savings": potentialSavings,
			},
			OrganizationID: orgID,
		}

		if err := g.persist(ctx, "Outcome Optimization",
			"Recommendations for optimizing treatment outcomes", "outcome",
			rec, actions, insight); err != nil {
			g.log.Warn().Err(err).Str("outcome", outcome).Msg("outcome recommendation failed, skipping")
			continue
		}
		created = append(created, rec)
	}
	return created, nil
}

// persist writes one recommendation, its actions and its insight in a
// single transaction, resolving the recommendation type first.
func (g *Generator) persist(ctx context.Context, typeName, typeDescription, impactArea string,
	rec *recommendations.Recommendation, actions []*recommendations.RecommendedAction,
	insight *recommendations.OptimizationInsight) error {
	return g.runTx(ctx, func(txCtx context.Context) error {
		typ, err := g.types.GetOrCreate(txCtx, typeName, typeDescription, impactArea)
		if err != nil {
			return fmt.Errorf("resolve type %q: %w", typeName, err)
		}
		rec.TypeID = &typ.ID

		if err := g.recs.Create(txCtx, rec); err != nil {
			return err
		}
		for i, a := range actions {
			a.RecommendationID = rec.ID
			a.SortOrder = i + 1
			if err := g.actions.Create(txCtx, a); err != nil {
				return fmt.Errorf("create action %d: %w", i+1, err)
			}
		}
		return g.insights.Create(txCtx, insight)
	})
}

func anyForOrganization(group []CostEffectivenessRatio, orgID uuid.UUID) bool {
	for _, r := range group {
		if r.OrganizationID != nil && *r.OrganizationID == orgID {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }
