package resources

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// topResources is how many resources keep their own row in the allocation
// summary before the rest are folded into "Other".
const topResources = 10

type Service struct {
	orgs        OrganizationRepository
	departments DepartmentRepository
	categories  ResourceCategoryRepository
	resources   ResourceRepository
	allocations AllocationRepository
}

func NewService(orgs OrganizationRepository, departments DepartmentRepository,
	categories ResourceCategoryRepository, resources ResourceRepository,
	allocations AllocationRepository) *Service {
	return &Service{
		orgs:        orgs,
		departments: departments,
		categories:  categories,
		resources:   resources,
		allocations: allocations,
	}
}

// -- Organizations --

func (s *Service) CreateOrganization(ctx context.Context, o *Organization) error {
	if o.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.orgs.Create(ctx, o)
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return s.orgs.GetByID(ctx, id)
}

func (s *Service) UpdateOrganization(ctx context.Context, o *Organization) error {
	if o.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.orgs.Update(ctx, o)
}

func (s *Service) DeleteOrganization(ctx context.Context, id uuid.UUID) error {
	return s.orgs.Delete(ctx, id)
}

func (s *Service) ListOrganizations(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	return s.orgs.List(ctx, limit, offset)
}

// -- Departments --

func (s *Service) CreateDepartment(ctx context.Context, d *Department) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.OrganizationID == uuid.Nil {
		return fmt.Errorf("organization_id is required")
	}
	if _, err := s.orgs.GetByID(ctx, d.OrganizationID); err != nil {
		return fmt.Errorf("organization not found: %w", err)
	}
	return s.departments.Create(ctx, d)
}

func (s *Service) ListDepartments(ctx context.Context, orgID uuid.UUID) ([]*Department, error) {
	return s.departments.ListByOrganization(ctx, orgID)
}

// -- Resource categories --

func (s *Service) CreateResourceCategory(ctx context.Context, c *ResourceCategory) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.categories.Create(ctx, c)
}

func (s *Service) ListResourceCategories(ctx context.Context) ([]*ResourceCategory, error) {
	return s.categories.List(ctx)
}

// -- Resources --

func (s *Service) CreateResource(ctx context.Context, r *Resource) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.UnitCost != nil && *r.UnitCost < 0 {
		return fmt.Errorf("unit_cost must not be negative")
	}
	return s.resources.Create(ctx, r)
}

func (s *Service) GetResource(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return s.resources.GetByID(ctx, id)
}

func (s *Service) ListResources(ctx context.Context, limit, offset int) ([]*Resource, int, error) {
	return s.resources.List(ctx, limit, offset)
}

// -- Allocations --

func (s *Service) CreateAllocation(ctx context.Context, a *ResourceAllocation) error {
	if a.ResourceID == uuid.Nil {
		return fmt.Errorf("resource_id is required")
	}
	if a.OrganizationID == nil && a.DepartmentID == nil {
		return fmt.Errorf("organization_id or department_id is required")
	}
	if a.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if a.TotalCost < 0 {
		return fmt.Errorf("total_cost must not be negative")
	}
	if a.AllocationDate.IsZero() {
		return fmt.Errorf("allocation_date is required")
	}
	return s.allocations.Create(ctx, a)
}

func (s *Service) ListAllocations(ctx context.Context, f AllocationFilter, limit, offset int) ([]*ResourceAllocation, int, error) {
	return s.allocations.List(ctx, f, limit, offset)
}

// AllocationSummary aggregates spend per resource and keeps the top entries,
// folding the tail into a single "Other" bucket for charting.
func (s *Service) AllocationSummary(ctx context.Context, f AllocationFilter) (*AllocationSummary, error) {
	rows, err := s.allocations.CostByResource(ctx, f)
	if err != nil {
		return nil, err
	}

	summary := &AllocationSummary{ResourceCount: len(rows)}
	for i, row := range rows {
		summary.TotalCost += row.TotalCost
		if i < topResources {
			summary.Rows = append(summary.Rows, row)
		} else {
			summary.OtherCost += row.TotalCost
		}
	}
	if summary.OtherCost > 0 {
		summary.Rows = append(summary.Rows, AllocationSummaryRow{
			ResourceName: "Other",
			TotalCost:    summary.OtherCost,
		})
	}
	return summary, nil
}
