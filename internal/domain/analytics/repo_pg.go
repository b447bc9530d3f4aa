package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthecon/healthecon/internal/domain/pricing"
	"github.com/healthecon/healthecon/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

type repoPG struct {
	pool   *pgxpool.Pool
	prices pricing.PriceRepository
}

func NewRepoPG(pool *pgxpool.Pool, prices pricing.PriceRepository) Repository {
	return &repoPG{pool: pool, prices: prices}
}

func (r *repoPG) MeasurementRows(ctx context.Context, treatmentID, outcomeID *uuid.UUID) ([]MeasurementRow, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT t.name, o.name, o.higher_is_better, m.value, t.average_cost, m.organization_id, org.name
		FROM outcome_measurements m
		JOIN treatments t ON t.id = m.treatment_id
		JOIN outcomes o ON o.id = m.outcome_id
		LEFT JOIN organizations org ON org.id = m.organization_id
		WHERE t.average_cost IS NOT NULL
			AND ($1::uuid IS NULL OR m.treatment_id = $1)
			AND ($2::uuid IS NULL OR m.outcome_id = $2)
		ORDER BY m.created_at`, treatmentID, outcomeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MeasurementRow
	for rows.Next() {
		var m MeasurementRow
		if err := rows.Scan(&m.TreatmentName, &m.OutcomeName, &m.HigherIsBetter,
			&m.Value, &m.Cost, &m.OrganizationID, &m.Organization); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repoPG) AllocationRows(ctx context.Context, orgID *uuid.UUID) ([]AllocationRow, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT a.organization_id, org.name, a.department_id, dept.name,
			a.resource_id, res.name, a.quantity, a.total_cost, a.fiscal_year
		FROM resource_allocations a
		JOIN resources res ON res.id = a.resource_id
		LEFT JOIN organizations org ON org.id = a.organization_id
		LEFT JOIN departments dept ON dept.id = a.department_id
		WHERE ($1::uuid IS NULL OR a.organization_id = $1)
		ORDER BY a.created_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AllocationRow
	for rows.Next() {
		var a AllocationRow
		if err := rows.Scan(&a.OrganizationID, &a.OrganizationName, &a.DepartmentID, &a.DepartmentName,
			&a.ResourceID, &a.ResourceName, &a.Quantity, &a.TotalCost, &a.FiscalYear); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) PriceStats(ctx context.Context, minPrices int) ([]pricing.PriceStats, error) {
	return r.prices.StatsByDrug(ctx, minPrices)
}

func (r *repoPG) AvgPriceByRegion(ctx context.Context) (map[string]float64, error) {
	return r.prices.AvgPriceByRegion(ctx)
}

func (r *repoPG) EntityCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{
		"drugs", "drug_prices", "organizations", "resources",
		"resource_allocations", "treatments", "outcome_measurements",
		"recommendations",
	} {
		var n int
		if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

func (r *repoPG) TotalAllocationCost(ctx context.Context) (float64, error) {
	var total float64
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(total_cost), 0) FROM resource_allocations`).Scan(&total)
	return total, err
}
