package resources

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

// =========== Organization Repository ===========

type orgRepoPG struct{ pool *pgxpool.Pool }

func NewOrganizationRepoPG(pool *pgxpool.Pool) OrganizationRepository { return &orgRepoPG{pool: pool} }

const orgCols = `id, name, type, description, address, city, state, country, postal_code, region_id, created_at`

func scanOrganization(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Type, &o.Description, &o.Address, &o.City,
		&o.State, &o.Country, &o.PostalCode, &o.RegionID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orgRepoPG) Create(ctx context.Context, o *Organization) error {
	o.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO organizations (id, name, type, description, address, city, state, country, postal_code, region_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.Name, o.Type, o.Description, o.Address, o.City, o.State, o.Country, o.PostalCode, o.RegionID)
	return err
}

func (r *orgRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return scanOrganization(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orgCols+` FROM organizations WHERE id = $1`, id))
}

func (r *orgRepoPG) Update(ctx context.Context, o *Organization) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE organizations SET name=$2, type=$3, description=$4, address=$5, city=$6,
			state=$7, country=$8, postal_code=$9, region_id=$10
		WHERE id = $1`,
		o.ID, o.Name, o.Type, o.Description, o.Address, o.City, o.State, o.Country, o.PostalCode, o.RegionID)
	return err
}

func (r *orgRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}

func (r *orgRepoPG) List(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+orgCols+` FROM organizations ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

// =========== Department Repository ===========

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

const departmentCols = `id, name, description, organization_id, budget, staff_count, created_at`

func scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.OrganizationID,
		&d.Budget, &d.StaffCount, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO departments (id, name, description, organization_id, budget, staff_count)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Name, d.Description, d.OrganizationID, d.Budget, d.StaffCount)
	return err
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	return scanDepartment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+departmentCols+` FROM departments WHERE id = $1`, id))
}

func (r *departmentRepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Department, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+departmentCols+` FROM departments WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// =========== Resource Category Repository ===========

type resourceCategoryRepoPG struct{ pool *pgxpool.Pool }

func NewResourceCategoryRepoPG(pool *pgxpool.Pool) ResourceCategoryRepository {
	return &resourceCategoryRepoPG{pool: pool}
}

func (r *resourceCategoryRepoPG) Create(ctx context.Context, c *ResourceCategory) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO resource_categories (id, name, description) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.Description)
	return err
}

func (r *resourceCategoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ResourceCategory, error) {
	var c ResourceCategory
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, description FROM resource_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *resourceCategoryRepoPG) List(ctx context.Context) ([]*ResourceCategory, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, description FROM resource_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ResourceCategory
	for rows.Next() {
		var c ResourceCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

// =========== Resource Repository ===========

type resourceRepoPG struct{ pool *pgxpool.Pool }

func NewResourceRepoPG(pool *pgxpool.Pool) ResourceRepository { return &resourceRepoPG{pool: pool} }

const resourceCols = `id, name, description, category_id, unit_cost, unit_type, created_at`

func scanResource(row pgx.Row) (*Resource, error) {
	var res Resource
	err := row.Scan(&res.ID, &res.Name, &res.Description, &res.CategoryID,
		&res.UnitCost, &res.UnitType, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepoPG) Create(ctx context.Context, res *Resource) error {
	res.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO resources (id, name, description, category_id, unit_cost, unit_type)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.Name, res.Description, res.CategoryID, res.UnitCost, res.UnitType)
	return err
}

func (r *resourceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return scanResource(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+resourceCols+` FROM resources WHERE id = $1`, id))
}

func (r *resourceRepoPG) GetByName(ctx context.Context, name string) (*Resource, error) {
	return scanResource(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+resourceCols+` FROM resources WHERE name = $1`, name))
}

func (r *resourceRepoPG) Update(ctx context.Context, res *Resource) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE resources SET name=$2, description=$3, category_id=$4, unit_cost=$5, unit_type=$6
		WHERE id = $1`,
		res.ID, res.Name, res.Description, res.CategoryID, res.UnitCost, res.UnitType)
	return err
}

func (r *resourceRepoPG) List(ctx context.Context, limit, offset int) ([]*Resource, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM resources`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+resourceCols+` FROM resources ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, res)
	}
	return items, total, rows.Err()
}

// =========== Allocation Repository ===========

type allocationRepoPG struct{ pool *pgxpool.Pool }

func NewAllocationRepoPG(pool *pgxpool.Pool) AllocationRepository {
	return &allocationRepoPG{pool: pool}
}

const allocationCols = `id, organization_id, department_id, resource_id, quantity, total_cost, allocation_date, fiscal_year, created_at`

func scanAllocation(row pgx.Row) (*ResourceAllocation, error) {
	var a ResourceAllocation
	err := row.Scan(&a.ID, &a.OrganizationID, &a.DepartmentID, &a.ResourceID,
		&a.Quantity, &a.TotalCost, &a.AllocationDate, &a.FiscalYear, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *allocationRepoPG) Create(ctx context.Context, a *ResourceAllocation) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO resource_allocations (id, organization_id, department_id, resource_id, quantity, total_cost, allocation_date, fiscal_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.OrganizationID, a.DepartmentID, a.ResourceID, a.Quantity, a.TotalCost, a.AllocationDate, a.FiscalYear)
	return err
}

func (r *allocationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ResourceAllocation, error) {
	return scanAllocation(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+allocationCols+` FROM resource_allocations WHERE id = $1`, id))
}

const allocationWhere = ` WHERE ($1::uuid IS NULL OR organization_id = $1)
		AND ($2::uuid IS NULL OR department_id = $2)
		AND ($3::uuid IS NULL OR resource_id = $3)
		AND ($4::text IS NULL OR fiscal_year = $4)`

func (r *allocationRepoPG) List(ctx context.Context, f AllocationFilter, limit, offset int) ([]*ResourceAllocation, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM resource_allocations`+allocationWhere,
		f.OrganizationID, f.DepartmentID, f.ResourceID, f.FiscalYear).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+allocationCols+` FROM resource_allocations`+allocationWhere+`
		ORDER BY allocation_date DESC LIMIT $5 OFFSET $6`,
		f.OrganizationID, f.DepartmentID, f.ResourceID, f.FiscalYear, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ResourceAllocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *allocationRepoPG) CostByResource(ctx context.Context, f AllocationFilter) ([]AllocationSummaryRow, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT res.name, COALESCE(SUM(a.total_cost), 0)
		FROM resource_allocations a
		JOIN resources res ON res.id = a.resource_id`+allocationWhere+`
		GROUP BY res.name
		ORDER BY SUM(a.total_cost) DESC`,
		f.OrganizationID, f.DepartmentID, f.ResourceID, f.FiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AllocationSummaryRow
	for rows.Next() {
		var row AllocationSummaryRow
		if err := rows.Scan(&row.ResourceName, &row.TotalCost); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
