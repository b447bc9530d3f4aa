package outcomes

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

// =========== Outcome Category Repository ===========

type outcomeCategoryRepoPG struct{ pool *pgxpool.Pool }

func NewOutcomeCategoryRepoPG(pool *pgxpool.Pool) OutcomeCategoryRepository {
	return &outcomeCategoryRepoPG{pool: pool}
}

func (r *outcomeCategoryRepoPG) Create(ctx context.Context, c *OutcomeCategory) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO outcome_categories (id, name, description) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.Description)
	return err
}

func (r *outcomeCategoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OutcomeCategory, error) {
	var c OutcomeCategory
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, description FROM outcome_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *outcomeCategoryRepoPG) List(ctx context.Context) ([]*OutcomeCategory, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, description FROM outcome_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OutcomeCategory
	for rows.Next() {
		var c OutcomeCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

// =========== Outcome Repository ===========

type outcomeRepoPG struct{ pool *pgxpool.Pool }

func NewOutcomeRepoPG(pool *pgxpool.Pool) OutcomeRepository { return &outcomeRepoPG{pool: pool} }

const outcomeCols = `id, name, description, category_id, measurement_unit, higher_is_better, created_at`

func scanOutcome(row pgx.Row) (*Outcome, error) {
	var o Outcome
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.CategoryID,
		&o.MeasurementUnit, &o.HigherIsBetter, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *outcomeRepoPG) Create(ctx context.Context, o *Outcome) error {
	o.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO outcomes (id, name, description, category_id, measurement_unit, higher_is_better)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.Name, o.Description, o.CategoryID, o.MeasurementUnit, o.HigherIsBetter)
	return err
}

func (r *outcomeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	return scanOutcome(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+outcomeCols+` FROM outcomes WHERE id = $1`, id))
}

func (r *outcomeRepoPG) GetByName(ctx context.Context, name string) (*Outcome, error) {
	return scanOutcome(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+outcomeCols+` FROM outcomes WHERE name = $1`, name))
}

func (r *outcomeRepoPG) List(ctx context.Context) ([]*Outcome, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+outcomeCols+` FROM outcomes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Outcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// =========== Treatment Repository ===========

type treatmentRepoPG struct{ pool *pgxpool.Pool }

func NewTreatmentRepoPG(pool *pgxpool.Pool) TreatmentRepository {
	return &treatmentRepoPG{pool: pool}
}

const treatmentCols = `id, name, description, drug_id, average_cost, created_at`

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.DrugID, &t.AverageCost, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	t.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO treatments (id, name, description, drug_id, average_cost)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Description, t.DrugID, t.AverageCost)
	return err
}

func (r *treatmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return scanTreatment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM treatments WHERE id = $1`, id))
}

func (r *treatmentRepoPG) GetByName(ctx context.Context, name string) (*Treatment, error) {
	return scanTreatment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM treatments WHERE name = $1`, name))
}

func (r *treatmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Treatment, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM treatments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+treatmentCols+` FROM treatments ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

// =========== Measurement Repository ===========

type measurementRepoPG struct{ pool *pgxpool.Pool }

func NewMeasurementRepoPG(pool *pgxpool.Pool) MeasurementRepository {
	return &measurementRepoPG{pool: pool}
}

const measurementCols = `id, outcome_id, treatment_id, organization_id, value, confidence_interval, sample_size, measurement_date, source, created_at`

func scanMeasurement(row pgx.Row) (*OutcomeMeasurement, error) {
	var m OutcomeMeasurement
	err := row.Scan(&m.ID, &m.OutcomeID, &m.TreatmentID, &m.OrganizationID, &m.Value,
		&m.ConfidenceInterval, &m.SampleSize, &m.MeasurementDate, &m.Source, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *measurementRepoPG) Create(ctx context.Context, m *OutcomeMeasurement) error {
	m.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO outcome_measurements (id, outcome_id, treatment_id, organization_id, value, confidence_interval, sample_size, measurement_date, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.OutcomeID, m.TreatmentID, m.OrganizationID, m.Value,
		m.ConfidenceInterval, m.SampleSize, m.MeasurementDate, m.Source)
	return err
}

func (r *measurementRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OutcomeMeasurement, error) {
	return scanMeasurement(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+measurementCols+` FROM outcome_measurements WHERE id = $1`, id))
}

const measurementWhere = ` WHERE ($1::uuid IS NULL OR outcome_id = $1)
		AND ($2::uuid IS NULL OR treatment_id = $2)
		AND ($3::uuid IS NULL OR organization_id = $3)`

func (r *measurementRepoPG) List(ctx context.Context, f MeasurementFilter, limit, offset int) ([]*OutcomeMeasurement, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM outcome_measurements`+measurementWhere,
		f.OutcomeID, f.TreatmentID, f.OrganizationID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+measurementCols+` FROM outcome_measurements`+measurementWhere+`
		ORDER BY measurement_date DESC NULLS LAST LIMIT $4 OFFSET $5`,
		f.OutcomeID, f.TreatmentID, f.OrganizationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*OutcomeMeasurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *measurementRepoPG) AvgByTreatment(ctx context.Context, outcomeID uuid.UUID) ([]TreatmentOutcomeAvg, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT t.id, t.name, t.average_cost, AVG(m.value), COUNT(m.id)
		FROM outcome_measurements m
		JOIN treatments t ON t.id = m.treatment_id
		WHERE m.outcome_id = $1 AND t.average_cost IS NOT NULL
		GROUP BY t.id, t.name, t.average_cost
		ORDER BY t.name`, outcomeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TreatmentOutcomeAvg
	for rows.Next() {
		var a TreatmentOutcomeAvg
		if err := rows.Scan(&a.TreatmentID, &a.TreatmentName, &a.AverageCost, &a.AvgValue, &a.SampleCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
