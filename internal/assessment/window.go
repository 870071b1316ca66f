package assessment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"building_twin/internal/model"
)

// windowTotals are kWh sums over a window of hourly records.
type windowTotals struct {
	consumption float64
	imported    float64
	exported    float64
	solar       float64
}

// sumWindow totals the records. An empty window, or one in which nothing was
// consumed, cannot support an annual verdict.
func sumWindow(records []model.BalanceRecord) (windowTotals, error) {
	if len(records) == 0 {
		return windowTotals{}, fmt.Errorf("assessment: no balance records: %w", model.ErrInsufficientData)
	}

	consumption := make([]float64, len(records))
	imported := make([]float64, len(records))
	exported := make([]float64, len(records))
	solar := make([]float64, len(records))
	for i, r := range records {
		consumption[i] = r.TotalConsumptionKW
		imported[i] = r.GridImportKW
		exported[i] = r.GridExportKW
		solar[i] = r.SolarKW
	}

	t := windowTotals{
		consumption: floats.Sum(consumption),
		imported:    floats.Sum(imported),
		exported:    floats.Sum(exported),
		solar:       floats.Sum(solar),
	}
	for _, v := range []float64{t.consumption, t.imported, t.exported, t.solar} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return windowTotals{}, fmt.Errorf("assessment: non-finite total: %w", model.ErrInvalidArgument)
		}
	}
	if t.consumption == 0 {
		return windowTotals{}, fmt.Errorf("assessment: zero consumption over %d records: %w",
			len(records), model.ErrInsufficientData)
	}
	return t, nil
}
