package pricing

import (
	"time"

	"github.com/google/uuid"
)

// DrugCategory maps to the drug_categories table.
type DrugCategory struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
}

// Drug maps to the drugs table (pharmaceutical catalog).
type Drug struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	GenericName  *string    `db:"generic_name" json:"generic_name,omitempty"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Manufacturer *string    `db:"manufacturer" json:"manufacturer,omitempty"`
	CategoryID   *uuid.UUID `db:"category_id" json:"category_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Region maps to the regions table (geographic price comparison areas).
type Region struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Country *string   `db:"country" json:"country,omitempty"`
	Code    *string   `db:"code" json:"code,omitempty"`
}

// DrugPrice maps to the drug_prices table. One observed price for a drug in
// a region on a date.
type DrugPrice struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DrugID    uuid.UUID `db:"drug_id" json:"drug_id"`
	RegionID  uuid.UUID `db:"region_id" json:"region_id"`
	Price     float64   `db:"price" json:"price"`
	Currency  string    `db:"currency" json:"currency"`
	PriceDate time.Time `db:"price_date" json:"price_date"`
	PriceType *string   `db:"price_type" json:"price_type,omitempty"`
	Source    *string   `db:"source" json:"source,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PriceStats is the per-drug price aggregate (count/min/max/avg) used by the
// trend views and the recommendation generator.
type PriceStats struct {
	DrugID     uuid.UUID `json:"drug_id"`
	DrugName   string    `json:"drug_name"`
	PriceCount int       `json:"price_count"`
	MinPrice   float64   `json:"min_price"`
	MaxPrice   float64   `json:"max_price"`
	AvgPrice   float64   `json:"avg_price"`
}

// PriceTrendPoint is one observation in a drug's per-region price series.
type PriceTrendPoint struct {
	RegionName string    `json:"region"`
	PriceDate  time.Time `json:"date"`
	Price      float64   `json:"price"`
	Currency   string    `json:"currency"`
}

// PriceTrend groups a drug's price observations by region for charting.
type PriceTrend struct {
	DrugID   uuid.UUID                    `json:"drug_id"`
	DrugName string                       `json:"drug"`
	Series   map[string][]PriceTrendPoint `json:"series"`
}
