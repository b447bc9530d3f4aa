package recommendations

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

// =========== Type Repository ===========

type typeRepoPG struct{ pool *pgxpool.Pool }

func NewTypeRepoPG(pool *pgxpool.Pool) TypeRepository { return &typeRepoPG{pool: pool} }

func (r *typeRepoPG) GetOrCreate(ctx context.Context, name, description, impactArea string) (*RecommendationType, error) {
	// Upsert on the unique name so concurrent generator runs land on the
	// same row.
	var t RecommendationType
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO recommendation_types (id, name, description, impact_area)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id, name, description, impact_area`,
		uuid.New(), name, description, impactArea).
		Scan(&t.ID, &t.Name, &t.Description, &t.ImpactArea)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *typeRepoPG) List(ctx context.Context) ([]*RecommendationType, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, description, impact_area FROM recommendation_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*RecommendationType
	for rows.Next() {
		var t RecommendationType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.ImpactArea); err != nil {
			return nil, err
		}
		items = append(items, &t)
	}
	return items, rows.Err()
}

// =========== Recommendation Repository ===========

type recommendationRepoPG struct{ pool *pgxpool.Pool }

func NewRecommendationRepoPG(pool *pgxpool.Pool) RecommendationRepository {
	return &recommendationRepoPG{pool: pool}
}

const recommendationCols = `id, title, description, type_id, organization_id, department_id,
	estimated_impact, impact_unit, confidence_level, implementation_difficulty,
	implementation_time, created_at, updated_at`

func scanRecommendation(row pgx.Row) (*Recommendation, error) {
	var rec Recommendation
	err := row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.TypeID, &rec.OrganizationID,
		&rec.DepartmentID, &rec.EstimatedImpact, &rec.ImpactUnit, &rec.ConfidenceLevel,
		&rec.ImplementationDifficulty, &rec.ImplementationTime, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepoPG) Create(ctx context.Context, rec *Recommendation) error {
	rec.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO recommendations (id, title, description, type_id, organization_id, department_id,
			estimated_impact, impact_unit, confidence_level, implementation_difficulty, implementation_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.Title, rec.Description, rec.TypeID, rec.OrganizationID, rec.DepartmentID,
		rec.EstimatedImpact, rec.ImpactUnit, rec.ConfidenceLevel,
		rec.ImplementationDifficulty, rec.ImplementationTime)
	return err
}

func (r *recommendationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Recommendation, error) {
	return scanRecommendation(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+recommendationCols+` FROM recommendations WHERE id = $1`, id))
}

func (r *recommendationRepoPG) List(ctx context.Context, f RecommendationFilter, limit, offset int) ([]*Recommendation, int, error) {
	where := ` WHERE ($1::uuid IS NULL OR type_id = $1) AND ($2::uuid IS NULL OR organization_id = $2)`

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM recommendations`+where, f.TypeID, f.OrganizationID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+recommendationCols+` FROM recommendations`+where+`
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		f.TypeID, f.OrganizationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *recommendationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM recommendations WHERE id = $1`, id)
	return err
}

// =========== Action Repository ===========

type actionRepoPG struct{ pool *pgxpool.Pool }

func NewActionRepoPG(pool *pgxpool.Pool) ActionRepository { return &actionRepoPG{pool: pool} }

func (r *actionRepoPG) Create(ctx context.Context, a *RecommendedAction) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO recommended_actions (id, recommendation_id, action, sort_order, responsible_role, timeframe)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.RecommendationID, a.Action, a.SortOrder, a.ResponsibleRole, a.Timeframe)
	return err
}

func (r *actionRepoPG) ListByRecommendation(ctx context.Context, recID uuid.UUID) ([]*RecommendedAction, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, recommendation_id, action, sort_order, responsible_role, timeframe
		FROM recommended_actions WHERE recommendation_id = $1 ORDER BY sort_order`, recID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*RecommendedAction
	for rows.Next() {
		var a RecommendedAction
		if err := rows.Scan(&a.ID, &a.RecommendationID, &a.Action, &a.SortOrder,
			&a.ResponsibleRole, &a.Timeframe); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

// =========== Insight Repository ===========

type insightRepoPG struct{ pool *pgxpool.Pool }

func NewInsightRepoPG(pool *pgxpool.Pool) InsightRepository { return &insightRepoPG{pool: pool} }

func (r *insightRepoPG) Create(ctx context.Context, i *OptimizationInsight) error {
	i.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO optimization_insights (id, title, description, insight_type, data, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		i.ID, i.Title, i.Description, i.InsightType, i.Data, i.OrganizationID)
	return err
}

func (r *insightRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OptimizationInsight, error) {
	var i OptimizationInsight
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, title, description, insight_type, data, organization_id, created_at
		FROM optimization_insights WHERE id = $1`, id).
		Scan(&i.ID, &i.Title, &i.Description, &i.InsightType, &i.Data,
			&i.OrganizationID, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *insightRepoPG) List(ctx context.Context, insightType string, limit, offset int) ([]*OptimizationInsight, int, error) {
	where := ` WHERE ($1 = '' OR insight_type = $1)`

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM optimization_insights`+where, insightType).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, title, description, insight_type, data, organization_id, created_at
		FROM optimization_insights`+where+`
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, insightType, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*OptimizationInsight
	for rows.Next() {
		var i OptimizationInsight
		if err := rows.Scan(&i.ID, &i.Title, &i.Description, &i.InsightType, &i.Data,
			&i.OrganizationID, &i.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &i)
	}
	return items, total, rows.Err()
}
