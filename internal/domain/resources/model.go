package resources

import (
	"time"

	"github.com/google/uuid"
)

// Organization maps to the organizations table (hospitals, clinics,
// pharmacies).
type Organization struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Type        *string    `db:"type" json:"type,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	City        *string    `db:"city" json:"city,omitempty"`
	State       *string    `db:"state" json:"state,omitempty"`
	Country     *string    `db:"country" json:"country,omitempty"`
	PostalCode  *string    `db:"postal_code" json:"postal_code,omitempty"`
	RegionID    *uuid.UUID `db:"region_id" json:"region_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Department maps to the departments table.
type Department struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Budget         *float64  `db:"budget" json:"budget,omitempty"`
	StaffCount     *int      `db:"staff_count" json:"staff_count,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ResourceCategory maps to the resource_categories table.
type ResourceCategory struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
}

// Resource maps to the resources table (staff time, equipment, supplies).
type Resource struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	CategoryID  *uuid.UUID `db:"category_id" json:"category_id,omitempty"`
	UnitCost    *float64   `db:"unit_cost" json:"unit_cost,omitempty"`
	UnitType    *string    `db:"unit_type" json:"unit_type,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ResourceAllocation maps to the resource_allocations table. One spend
// record for a resource against an organization and optionally a
// department.
type ResourceAllocation struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrganizationID *uuid.UUID `db:"organization_id" json:"organization_id,omitempty"`
	DepartmentID   *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	ResourceID     uuid.UUID  `db:"resource_id" json:"resource_id"`
	Quantity       float64    `db:"quantity" json:"quantity"`
	TotalCost      float64    `db:"total_cost" json:"total_cost"`
	AllocationDate time.Time  `db:"allocation_date" json:"allocation_date"`
	FiscalYear     *string    `db:"fiscal_year" json:"fiscal_year,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// AllocationSummaryRow is one resource's aggregate spend, used by the
// allocation dashboard.
type AllocationSummaryRow struct {
	ResourceName string  `json:"resource"`
	TotalCost    float64 `json:"total_cost"`
}

// AllocationSummary rolls resource spend up for charting: the top resources
// by cost, with the remainder folded into an "Other" bucket.
type AllocationSummary struct {
	Rows          []AllocationSummaryRow `json:"rows"`
	OtherCost     float64                `json:"other_cost"`
	TotalCost     float64                `json:"total_cost"`
	ResourceCount int                    `json:"resource_count"`
}
