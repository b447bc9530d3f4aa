package analytics

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// MeasurementRow is one outcome measurement joined with its treatment's
// average cost and its outcome metric. Rows without a treatment or without a
// recorded cost are not produced by the reader.
type MeasurementRow struct {
	TreatmentName  string
	OutcomeName    string
	HigherIsBetter bool
	Value          float64
	Cost           float64
	OrganizationID *uuid.UUID
	Organization   *string
}

// CostEffectivenessRatio is cost spent per unit of outcome achieved. Lower
// is always better: for lower-is-better outcomes the raw ratio is inverted
// so the ordering reads the same way.
type CostEffectivenessRatio struct {
	Treatment    string  `json:"treatment"`
	Outcome      string  `json:"outcome"`
	Measurement  float64 `json:"measurement"`
	Cost         float64 `json:"cost"`
	Ratio        float64 `json:"ratio"`

	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Organization   *string    `json:"organization,omitempty"`
}

// ComputeRatios derives cost-effectiveness ratios from measurement rows and
// returns them sorted ascending, best value first. Rows with a zero cost or
// zero value carry no signal and are skipped.
func ComputeRatios(rows []MeasurementRow) []CostEffectivenessRatio {
	var ratios []CostEffectivenessRatio
	for _, row := range rows {
		if row.Cost == 0 || row.Value == 0 {
			continue
		}
		ratio := row.Cost / row.Value
		if !row.HigherIsBetter {
			if ratio == 0 {
				ratio = math.Inf(1)
			} else {
				ratio = 1 / ratio
			}
		}
		ratios = append(ratios, CostEffectivenessRatio{
			Treatment:      row.TreatmentName,
			Outcome:        row.OutcomeName,
			Measurement:    row.Value,
			Cost:           row.Cost,
			Ratio:          ratio,
			OrganizationID: row.OrganizationID,
			Organization:   row.Organization,
		})
	}
	sort.SliceStable(ratios, func(i, j int) bool { return ratios[i].Ratio < ratios[j].Ratio })
	return ratios
}
