package pricing

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

// =========== Category Repository ===========

type categoryRepoPG struct{ pool *pgxpool.Pool }

func NewCategoryRepoPG(pool *pgxpool.Pool) CategoryRepository { return &categoryRepoPG{pool: pool} }

func (r *categoryRepoPG) Create(ctx context.Context, c *DrugCategory) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO drug_categories (id, name, description) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.Description)
	return err
}

func (r *categoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DrugCategory, error) {
	var c DrugCategory
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, description FROM drug_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepoPG) List(ctx context.Context) ([]*DrugCategory, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, description FROM drug_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*DrugCategory
	for rows.Next() {
		var c DrugCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

// =========== Drug Repository ===========

type drugRepoPG struct{ pool *pgxpool.Pool }

func NewDrugRepoPG(pool *pgxpool.Pool) DrugRepository { return &drugRepoPG{pool: pool} }

const drugCols = `id, name, generic_name, description, manufacturer, category_id, created_at, updated_at`

func scanDrug(row pgx.Row) (*Drug, error) {
	var d Drug
	err := row.Scan(&d.ID, &d.Name, &d.GenericName, &d.Description, &d.Manufacturer,
		&d.CategoryID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *drugRepoPG) Create(ctx context.Context, d *Drug) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO drugs (id, name, generic_name, description, manufacturer, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Name, d.GenericName, d.Description, d.Manufacturer, d.CategoryID)
	return err
}

func (r *drugRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Drug, error) {
	return scanDrug(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+drugCols+` FROM drugs WHERE id = $1`, id))
}

func (r *drugRepoPG) GetByName(ctx context.Context, name string) (*Drug, error) {
	return scanDrug(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+drugCols+` FROM drugs WHERE name = $1`, name))
}

func (r *drugRepoPG) Update(ctx context.Context, d *Drug) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE drugs SET name=$2, generic_name=$3, description=$4, manufacturer=$5,
			category_id=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.GenericName, d.Description, d.Manufacturer, d.CategoryID)
	return err
}

func (r *drugRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM drugs WHERE id = $1`, id)
	return err
}

func (r *drugRepoPG) List(ctx context.Context, limit, offset int) ([]*Drug, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM drugs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+drugCols+` FROM drugs ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Drug
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// =========== Region Repository ===========

type regionRepoPG struct{ pool *pgxpool.Pool }

func NewRegionRepoPG(pool *pgxpool.Pool) RegionRepository { return &regionRepoPG{pool: pool} }

func scanRegion(row pgx.Row) (*Region, error) {
	var reg Region
	if err := row.Scan(&reg.ID, &reg.Name, &reg.Country, &reg.Code); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *regionRepoPG) Create(ctx context.Context, reg *Region) error {
	reg.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO regions (id, name, country, code) VALUES ($1, $2, $3, $4)`,
		reg.ID, reg.Name, reg.Country, reg.Code)
	return err
}

func (r *regionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Region, error) {
	return scanRegion(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, country, code FROM regions WHERE id = $1`, id))
}

func (r *regionRepoPG) GetByName(ctx context.Context, name string) (*Region, error) {
	return scanRegion(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, country, code FROM regions WHERE name = $1`, name))
}

func (r *regionRepoPG) List(ctx context.Context) ([]*Region, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, country, code FROM regions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Region
	for rows.Next() {
		reg, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, reg)
	}
	return items, rows.Err()
}

// =========== Price Repository ===========

type priceRepoPG struct{ pool *pgxpool.Pool }

func NewPriceRepoPG(pool *pgxpool.Pool) PriceRepository { return &priceRepoPG{pool: pool} }

const priceCols = `id, drug_id, region_id, price, currency, price_date, price_type, source, created_at`

func scanPrice(row pgx.Row) (*DrugPrice, error) {
	var p DrugPrice
	err := row.Scan(&p.ID, &p.DrugID, &p.RegionID, &p.Price, &p.Currency,
		&p.PriceDate, &p.PriceType, &p.Source, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *priceRepoPG) Create(ctx context.Context, p *DrugPrice) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO drug_prices (id, drug_id, region_id, price, currency, price_date, price_type, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.DrugID, p.RegionID, p.Price, p.Currency, p.PriceDate, p.PriceType, p.Source)
	return err
}

func (r *priceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DrugPrice, error) {
	return scanPrice(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+priceCols+` FROM drug_prices WHERE id = $1`, id))
}

func (r *priceRepoPG) List(ctx context.Context, f PriceFilter, limit, offset int) ([]*DrugPrice, int, error) {
	where := ` WHERE ($1::uuid IS NULL OR drug_id = $1) AND ($2::uuid IS NULL OR region_id = $2)`

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM drug_prices`+where, f.DrugID, f.RegionID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+priceCols+` FROM drug_prices`+where+` ORDER BY price_date DESC LIMIT $3 OFFSET $4`,
		f.DrugID, f.RegionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DrugPrice
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *priceRepoPG) StatsByDrug(ctx context.Context, minCount int) ([]PriceStats, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT d.id, d.name, COUNT(p.id), MIN(p.price), MAX(p.price), AVG(p.price)
		FROM drugs d
		JOIN drug_prices p ON p.drug_id = d.id
		GROUP BY d.id, d.name
		HAVING COUNT(p.id) >= $1
		ORDER BY d.name`, minCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []PriceStats
	for rows.Next() {
		var s PriceStats
		if err := rows.Scan(&s.DrugID, &s.DrugName, &s.PriceCount, &s.MinPrice, &s.MaxPrice, &s.AvgPrice); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *priceRepoPG) TrendByDrug(ctx context.Context, drugID uuid.UUID) ([]PriceTrendPoint, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT reg.name, p.price_date, p.price, p.currency
		FROM drug_prices p
		JOIN regions reg ON reg.id = p.region_id
		WHERE p.drug_id = $1
		ORDER BY p.price_date`, drugID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var points []PriceTrendPoint
	for rows.Next() {
		var pt PriceTrendPoint
		if err := rows.Scan(&pt.RegionName, &pt.PriceDate, &pt.Price, &pt.Currency); err != nil {
			return nil, err
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}

func (r *priceRepoPG) AvgPriceByRegion(ctx context.Context) (map[string]float64, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT reg.name, AVG(p.price)
		FROM drug_prices p
		JOIN regions reg ON reg.id = p.region_id
		GROUP BY reg.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	avgs := make(map[string]float64)
	for rows.Next() {
		var name string
		var avg float64
		if err := rows.Scan(&name, &avg); err != nil {
			return nil, err
		}
		avgs[name] = avg
	}
	return avgs, rows.Err()
}
