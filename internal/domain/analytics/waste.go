package analytics

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// AllocationRow is one resource allocation joined with its resource,
// organization and department names.
type AllocationRow struct {
	OrganizationID   *uuid.UUID
	OrganizationName *string
	DepartmentID     *uuid.UUID
	DepartmentName   *string
	ResourceID       uuid.UUID
	ResourceName     string
	Quantity         float64
	TotalCost        float64
	FiscalYear       *string
}

// WasteItem flags one allocation whose unit cost sits well above the mean
// for the same resource. ExcessCost is the spend above what the mean unit
// cost would have produced for the same quantity.
type WasteItem struct {
	OrganizationID   *uuid.UUID `json:"organization_id,omitempty"`
	OrganizationName *string    `json:"organization,omitempty"`
	DepartmentID     *uuid.UUID `json:"department_id,omitempty"`
	DepartmentName   *string    `json:"department,omitempty"`
	Resource         string     `json:"resource"`
	ActualUnitCost   float64    `json:"actual_unit_cost"`
	AverageUnitCost  float64    `json:"average_unit_cost"`
	Quantity         float64    `json:"quantity"`
	ExcessCost       float64    `json:"excess_cost"`
	FiscalYear       *string    `json:"fiscal_year,omitempty"`
}

// wasteStddevMultiplier is how many standard deviations above the mean a
// unit cost must sit before an allocation is flagged.
const wasteStddevMultiplier = 1.5

// IdentifyWaste groups allocations by resource and flags the ones whose
// unit cost exceeds mean + 1.5*stddev within the group. Groups with zero
// variance flag nothing, so uniform pricing never produces false positives.
// Results are sorted by excess cost, largest first.
func IdentifyWaste(rows []AllocationRow) []WasteItem {
	groups := make(map[uuid.UUID][]AllocationRow)
	var order []uuid.UUID
	for _, row := range rows {
		if _, seen := groups[row.ResourceID]; !seen {
			order = append(order, row.ResourceID)
		}
		groups[row.ResourceID] = append(groups[row.ResourceID], row)
	}

	var items []WasteItem
	for _, resourceID := range order {
		group := groups[resourceID]
		costs := make([]float64, len(group))
		for i, row := range group {
			costs[i] = unitCost(row)
		}
		mean, stddev := meanStddev(costs)
		if stddev <= 0 {
			continue
		}
		threshold := mean + wasteStddevMultiplier*stddev
		for i, row := range group {
			if costs[i] > threshold {
				items = append(items, WasteItem{
					OrganizationID:   row.OrganizationID,
					OrganizationName: row.OrganizationName,
					DepartmentID:     row.DepartmentID,
					DepartmentName:   row.DepartmentName,
					Resource:         row.ResourceName,
					ActualUnitCost:   costs[i],
					AverageUnitCost:  mean,
					Quantity:         row.Quantity,
					ExcessCost:       (costs[i] - mean) * row.Quantity,
					FiscalYear:       row.FiscalYear,
				})
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].ExcessCost > items[j].ExcessCost })
	return items
}

func unitCost(row AllocationRow) float64 {
	if row.Quantity == 0 {
		return 0
	}
	return row.TotalCost / row.Quantity
}

// meanStddev returns the mean and population standard deviation. A group of
// one has no spread to measure and reports zero stddev.
func meanStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
