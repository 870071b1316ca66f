package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/simulator"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	SeriesSheet  = "series"
	SummarySheet = "summary"
)

// WriteXLSX writes a workbook with the full series and a summary sheet.
func WriteXLSX(w io.Writer, res simulator.Result, kpis assessment.KPIs) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(SeriesSheet); err != nil {
		return err
	}

	for i, row := range SummaryRows(res, kpis) {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &[]any{row.Label, row.Value}); err != nil {
			return fmt.Errorf("summary row %d: %w", i+1, err)
		}
	}

	header := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = string(c)
	}
	if err := f.SetSheetRow(SeriesSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range res.Records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := seriesRow(r)
		if err := f.SetSheetRow(SeriesSheet, cell, &row); err != nil {
			return fmt.Errorf("series row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

func seriesRow(r model.BalanceRecord) []any {
	row := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		switch c {
		case model.ColTimestamp:
			row[i] = r.Timestamp.Format(time.RFC3339)
		case model.ColOccupancy:
			row[i] = r.Occupancy
		default:
			row[i], _ = r.Value(c)
		}
	}
	return row
}

// SummaryRow is one labelled figure of a run summary.
type SummaryRow struct {
	Label string
	Value any
}

// SummaryRows lists the headline figures of a run in display order.
// Undefined ratios are rendered as "n/a".
func SummaryRows(res simulator.Result, kpis assessment.KPIs) []SummaryRow {
	c, cb := res.Compliance, res.Carbon
	return []SummaryRow{
		{"Seed", res.Seed},
		{"Window (hours)", kpis.WindowHours},
		{"Annual consumption (kWh)", c.AnnualConsumptionKWh},
		{"EPI (kWh/m²/year)", c.EPI},
		{"Regulatory limit (kWh/m²/year)", c.RegulatoryLimit},
		{"Compliant", c.Compliant},
		{"Required savings (kWh)", c.RequiredSavingsKWh},
		{"Gross emissions (kgCO2)", cb.GrossEmissionsKg},
		{"Carbon offset (kgCO2)", cb.CarbonOffsetKg},
		{"Net emissions (kgCO2)", cb.NetEmissionsKg},
		{"Annual net emissions (tCO2)", cb.AnnualNetTonnes()},
		{"Renewable share (%)", ratioValue(kpis.RenewableSharePct)},
		{"Peak demand (kW)", kpis.PeakDemandKW},
		{"Peak demand at", kpis.PeakDemandAt.Format(time.RFC3339)},
		{"Load factor", ratioValue(kpis.LoadFactor)},
		{"Average solar (kW)", kpis.AverageSolarKW},
		{"Carbon reduction (%)", ratioValue(kpis.CarbonReductionPct)},
	}
}

func ratioValue(r assessment.Ratio) any {
	if !r.Defined {
		return "n/a"
	}
	return r.Value
}
