package recommendations

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationType maps to the recommendation_types table. Names are
// unique; the generator creates types on demand.
type RecommendationType struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	ImpactArea  *string   `db:"impact_area" json:"impact_area,omitempty"`
}

// Recommendation maps to the recommendations table. One optimization
// opportunity, with its estimated impact and implementation metadata.
type Recommendation struct {
	ID                       uuid.UUID  `db:"id" json:"id"`
	Title                    string     `db:"title" json:"title"`
	Description              string     `db:"description" json:"description"`
	TypeID                   *uuid.UUID `db:"type_id" json:"type_id,omitempty"`
	OrganizationID           *uuid.UUID `db:"organization_id" json:"organization_id,omitempty"`
	DepartmentID             *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	EstimatedImpact          *float64   `db:"estimated_impact" json:"estimated_impact,omitempty"`
	ImpactUnit               *string    `db:"impact_unit" json:"impact_unit,omitempty"`
	ConfidenceLevel          *string    `db:"confidence_level" json:"confidence_level,omitempty"`
	ImplementationDifficulty *string    `db:"implementation_difficulty" json:"implementation_difficulty,omitempty"`
	ImplementationTime       *string    `db:"implementation_time" json:"implementation_time,omitempty"`
	CreatedAt                time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updated_at"`

	Actions []*RecommendedAction `db:"-" json:"actions,omitempty"`
}

// RecommendedAction maps to the recommended_actions table. Steps are
// ordered by SortOrder within one recommendation.
type RecommendedAction struct {
	ID               uuid.UUID `db:"id" json:"id"`
	RecommendationID uuid.UUID `db:"recommendation_id" json:"recommendation_id"`
	Action           string    `db:"action" json:"action"`
	SortOrder        int       `db:"sort_order" json:"sort_order"`
	ResponsibleRole  *string   `db:"responsible_role" json:"responsible_role,omitempty"`
	Timeframe        *string   `db:"timeframe" json:"timeframe,omitempty"`
}

// OptimizationInsight maps to the optimization_insights table. Data holds
// the analysis payload behind the insight as JSONB.
type OptimizationInsight struct {
	ID             uuid.UUID              `db:"id" json:"id"`
	Title          string                 `db:"title" json:"title"`
	Description    string                 `db:"description" json:"description"`
	InsightType    *string                `db:"insight_type" json:"insight_type,omitempty"`
	Data           map[string]interface{} `db:"data" json:"data,omitempty"`
	OrganizationID *uuid.UUID             `db:"organization_id" json:"organization_id,omitempty"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
}
