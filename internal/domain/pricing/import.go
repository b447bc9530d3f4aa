package pricing

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

// maxReportedErrors caps the error list returned to the client; the full
// set is still logged.
const maxReportedErrors = 20

// Importer loads drug price rows from CSV. Unknown drugs and regions are
// created on the fly by name; bad rows are counted and skipped.
type Importer struct {
	drugs   DrugRepository
	regions RegionRepository
	prices  PriceRepository
	log     zerolog.Logger
}

func NewImporter(drugs DrugRepository, regions RegionRepository, prices PriceRepository, log zerolog.Logger) *Importer {
	return &Importer{drugs: drugs, regions: regions, prices: prices, log: log}
}

// ImportPrices reads CSV rows with columns drug_name, region, price,
// currency, price_date and optional price_type, source. The header row is
// required and column order is taken from it.
func (im *Importer) ImportPrices(ctx context.Context, r io.Reader) (*ImportResult, error) {
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
	for _, required := range []string{"drug_name", "region", "price", "price_date"} {
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

	drugName := field("drug_name")
	regionName := field("region")
	if drugName == "" || regionName == "" {
		return fmt.Errorf("drug_name and region are required")
	}

	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", field("price"))
	}
	priceDate, err := time.Parse("2006-01-02", field("price_date"))
	if err != nil {
		return fmt.Errorf("invalid price_date %q", field("price_date"))
	}

	drug, err := im.getOrCreateDrug(ctx, drugName)
	if err != nil {
		return err
	}
	region, err := im.getOrCreateRegion(ctx, regionName)
	if err != nil {
		return err
	}

	p := &DrugPrice{
		DrugID:    drug.ID,
		RegionID:  region.ID,
		Price:     price,
		Currency:  field("currency"),
		PriceDate: priceDate,
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if v := field("price_type"); v != "" {
		p.PriceType = &v
	}
	if v := field("source"); v != "" {
		p.Source = &v
	}
	return im.prices.Create(ctx, p)
}

func (im *Importer) getOrCreateDrug(ctx context.Context, name string) (*Drug, error) {
	if d, err := im.drugs.GetByName(ctx, name); err == nil {
		return d, nil
	}
	d := &Drug{Name: name}
	if err := im.drugs.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create drug %q: %w", name, err)
	}
	return d, nil
}

func (im *Importer) getOrCreateRegion(ctx context.Context, name string) (*Region, error) {
	if r, err := im.regions.GetByName(ctx, name); err == nil {
		return r, nil
	}
	r := &Region{Name: name}
	if err := im.regions.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create region %q: %w", name, err)
	}
	return r, nil
}

func (im *Importer) recordError(res *ImportResult, line int, err error) {
	res.Failed++
	im.log.Warn().Int("line", line).Err(err).Msg("price import row failed")
	if len(res.Errors) < maxReportedErrors {
		res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
	}
}
