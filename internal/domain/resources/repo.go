package resources

import (
	"context"

	"github.com/google/uuid"
)

type OrganizationRepository interface {
	Create(ctx context.Context, o *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	Update(ctx context.Context, o *Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Organization, int, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Department, error)
}

type ResourceCategoryRepository interface {
	Create(ctx context.Context, c *ResourceCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*ResourceCategory, error)
	List(ctx context.Context) ([]*ResourceCategory, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, r *Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*Resource, error)
	GetByName(ctx context.Context, name string) (*Resource, error)
	Update(ctx context.Context, r *Resource) error
	List(ctx context.Context, limit, offset int) ([]*Resource, int, error)
}

// AllocationFilter narrows allocation listings; nil fields pass everything.
type AllocationFilter struct {
	OrganizationID *uuid.UUID
	DepartmentID   *uuid.UUID
	ResourceID     *uuid.UUID
	FiscalYear     *string
}

type AllocationRepository interface {
	Create(ctx context.Context, a *ResourceAllocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*ResourceAllocation, error)
	List(ctx context.Context, f AllocationFilter, limit, offset int) ([]*ResourceAllocation, int, error)
	// CostByResource returns per-resource total spend matching the filter,
	// ordered by total cost descending.
	CostByResource(ctx context.Context, f AllocationFilter) ([]AllocationSummaryRow, error)
}
