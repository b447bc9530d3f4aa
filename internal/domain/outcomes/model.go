package outcomes

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeCategory maps to the outcome_categories table.
type OutcomeCategory struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
}

// Outcome maps to the outcomes table. HigherIsBetter controls how
// cost-effectiveness ratios are read for this metric.
type Outcome struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Description     *string    `db:"description" json:"description,omitempty"`
	CategoryID      *uuid.UUID `db:"category_id" json:"category_id,omitempty"`
	MeasurementUnit *string    `db:"measurement_unit" json:"measurement_unit,omitempty"`
	HigherIsBetter  bool       `db:"higher_is_better" json:"higher_is_better"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Treatment maps to the treatments table (procedures and drug regimens).
type Treatment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	DrugID      *uuid.UUID `db:"drug_id" json:"drug_id,omitempty"`
	AverageCost *float64   `db:"average_cost" json:"average_cost,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// OutcomeMeasurement maps to the outcome_measurements table. One observed
// outcome value for a treatment, optionally scoped to an organization.
type OutcomeMeasurement struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	OutcomeID          uuid.UUID  `db:"outcome_id" json:"outcome_id"`
	TreatmentID        *uuid.UUID `db:"treatment_id" json:"treatment_id,omitempty"`
	OrganizationID     *uuid.UUID `db:"organization_id" json:"organization_id,omitempty"`
	Value              float64    `db:"value" json:"value"`
	ConfidenceInterval *string    `db:"confidence_interval" json:"confidence_interval,omitempty"`
	SampleSize         *int       `db:"sample_size" json:"sample_size,omitempty"`
	MeasurementDate    *time.Time `db:"measurement_date" json:"measurement_date,omitempty"`
	Source             *string    `db:"source" json:"source,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// TreatmentOutcomeAvg is a treatment's average measured value for one
// outcome, the input row for cost-effectiveness analysis.
type TreatmentOutcomeAvg struct {
	TreatmentID   uuid.UUID `json:"treatment_id"`
	TreatmentName string    `json:"treatment_name"`
	AverageCost   float64   `json:"average_cost"`
	AvgValue      float64   `json:"avg_value"`
	SampleCount   int       `json:"sample_count"`
}
