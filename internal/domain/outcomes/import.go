package outcomes

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ImportResult summarizes a bulk CSV import.
type ImportResult struct {
	Processed int      `json:"processed"`
	Imported  int      `json:"imported"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

const maxReportedErrors = 20

// Importer loads outcome measurement rows from CSV. Outcomes and treatments
// are resolved by name and must already exist; a measurement cannot invent
// the metric it measures.
type Importer struct {
	outcomes     OutcomeRepository
	treatments   TreatmentRepository
	measurements MeasurementRepository
	log          zerolog.Logger
}

func NewImporter(outcomes OutcomeRepository, treatments TreatmentRepository,
	measurements MeasurementRepository, log zerolog.Logger) *Importer {
	return &Importer{outcomes: outcomes, treatments: treatments, measurements: measurements, log: log}
}

// ImportMeasurements reads CSV rows with columns outcome_name, value and
// optional treatment_name, sample_size, confidence_interval,
// measurement_date, source.
func (im *Importer) ImportMeasurements(ctx context.Context, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"outcome_name", "value"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	res := &ImportResult{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Processed++
			im.recordError(res, line, err)
			continue
		}

		res.Processed++
		if err := im.importRow(ctx, cols, record); err != nil {
			im.recordError(res, line, err)
			continue
		}
		res.Imported++
	}
	return res, nil
}

func (im *Importer) importRow(ctx context.Context, cols map[string]int, record []string) error {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	outcomeName := field("outcome_name")
	if outcomeName == "" {
		return fmt.Errorf("outcome_name is required")
	}
	outcome, err := im.outcomes.GetByName(ctx, outcomeName)
	if err != nil {
		return fmt.Errorf("unknown outcome %q", outcomeName)
	}

	value, err := strconv.ParseFloat(field("value"), 64)
	if err != nil {
		return fmt.Errorf("invalid value %q", field("value"))
	}

	m := &OutcomeMeasurement{
		OutcomeID: outcome.ID,
		Value:     value,
	}
	if name := field("treatment_name"); name != "" {
		t, err := im.treatments.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("unknown treatment %q", name)
		}
		m.TreatmentID = &t.ID
	}
	if v := field("sample_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid sample_size %q", v)
		}
		m.SampleSize = &n
	}
	if v := field("confidence_interval"); v != "" {
		m.ConfidenceInterval = &v
	}
	if v := field("measurement_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fmt.Errorf("invalid measurement_date %q", v)
		}
		m.MeasurementDate = &d
	}
	source := field("source")
	if source == "" {
		source = "data import"
	}
	m.Source = &source

	return im.measurements.Create(ctx, m)
}

func (im *Importer) recordError(res *ImportResult, line int, err error) {
	res.Failed++
	im.log.Warn().Int("line", line).Err(err).Msg("measurement import row failed")
	if len(res.Errors) < maxReportedErrors {
		res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
	}
}
