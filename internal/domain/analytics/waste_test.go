package analytics

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func allocation(resourceID uuid.UUID, resource string, quantity, totalCost float64) AllocationRow {
	return AllocationRow{
		ResourceID:   resourceID,
		ResourceName: resource,
		Quantity:     quantity,
		TotalCost:    totalCost,
	}
}

func TestIdentifyWasteFlagsOutlier(t *testing.T) {
	resID := uuid.New()
	// unit costs [100, 100, 100, 500]: mean=200, stddev≈173.2,
	// threshold ≈ 459.9, so only the 500 allocation crosses it
	rows := []AllocationRow{
		allocation(resID, "MRI scans", 2, 200),
		allocation(resID, "MRI scans", 3, 300),
		allocation(resID, "MRI scans", 1, 100),
		allocation(resID, "MRI scans", 2, 1000),
	}

	items := IdentifyWaste(rows)
	if len(items) != 1 {
		t.Fatalf("expected exactly one flagged item, got %d", len(items))
	}
	item := items[0]
	if item.ActualUnitCost != 500 {
		t.Errorf("expected flagged unit cost 500, got %v", item.ActualUnitCost)
	}
	if item.AverageUnitCost != 200 {
		t.Errorf("expected mean unit cost 200, got %v", item.AverageUnitCost)
	}
	wantExcess := (500.0 - 200.0) * 2
	if math.Abs(item.ExcessCost-wantExcess) > 1e-9 {
		t.Errorf("expected excess cost %v, got %v", wantExcess, item.ExcessCost)
	}
}

func TestIdentifyWasteUniformCostsFlagNothing(t *testing.T) {
	resID := uuid.New()
	rows := []AllocationRow{
		allocation(resID, "Gloves", 10, 100),
		allocation(resID, "Gloves", 20, 200),
		allocation(resID, "Gloves", 5, 50),
	}

	if items := IdentifyWaste(rows); len(items) != 0 {
		t.Fatalf("expected no flags for uniform unit costs, got %d", len(items))
	}
}

func TestIdentifyWasteZeroQuantityUnitCost(t *testing.T) {
	resID := uuid.New()
	rows := []AllocationRow{
		allocation(resID, "Beds", 0, 1000),
		allocation(resID, "Beds", 1, 10),
		allocation(resID, "Beds", 1, 10),
	}

	// zero-quantity row contributes unit cost 0, not a division panic
	items := IdentifyWaste(rows)
	for _, item := range items {
		if item.ActualUnitCost == 0 {
			t.Errorf("zero-unit-cost row should never be flagged: %+v", item)
		}
	}
}

func TestIdentifyWasteSortsByExcessDescending(t *testing.T) {
	resA := uuid.New()
	resB := uuid.New()
	rows := []AllocationRow{
		allocation(resA, "Syringes", 1, 10),
		allocation(resA, "Syringes", 1, 10),
		allocation(resA, "Syringes", 1, 10),
		allocation(resA, "Syringes", 5, 500),
		allocation(resB, "Masks", 1, 10),
		allocation(resB, "Masks", 1, 10),
		allocation(resB, "Masks", 1, 10),
		allocation(resB, "Masks", 1, 1000),
	}

	items := IdentifyWaste(rows)
	if len(items) < 2 {
		t.Fatalf("expected at least 2 flagged items, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].ExcessCost > items[i-1].ExcessCost {
			t.Fatalf("items not sorted by excess desc: %v before %v",
				items[i-1].ExcessCost, items[i].ExcessCost)
		}
	}
}

func TestIdentifyWasteSingleAllocationNoFlag(t *testing.T) {
	rows := []AllocationRow{
		allocation(uuid.New(), "Ventilators", 1, 100000),
	}
	if items := IdentifyWaste(rows); len(items) != 0 {
		t.Fatalf("a lone allocation has no baseline, expected no flags, got %d", len(items))
	}
}

func TestIdentifyWasteEmptyInput(t *testing.T) {
	if items := IdentifyWaste(nil); len(items) != 0 {
		t.Fatalf("expected no items for empty input, got %d", len(items))
	}
}
