package assessment

import (
	"fmt"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"building_twin/internal/model"
)

// Ratio is a derived percentage or fraction that is undefined when its
// denominator is zero.
type Ratio struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

func ratio(num, den float64) Ratio {
	if den == 0 {
		return Ratio{}
	}
	return Ratio{Value: num / den, Defined: true}
}

// Get returns the value, or ErrUndefinedRatio.
func (r Ratio) Get() (float64, error) {
	if !r.Defined {
		return 0, model.ErrUndefinedRatio
	}
	return r.Value, nil
}

// Format renders the value with the given precision, or "n/a".
func (r Ratio) Format(prec int) string {
	if !r.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', prec, 64)
}

// KPIs are the headline performance indicators of a run.
type KPIs struct {
	RenewableSharePct   Ratio     `json:"renewable_share_pct"` // Σsolar / Σconsumption
	PeakDemandKW        float64   `json:"peak_demand_kw"`
	PeakDemandAt        time.Time `json:"peak_demand_at"`
	LoadFactor          Ratio     `json:"load_factor"` // mean / peak consumption
	AverageSolarKW      float64   `json:"average_solar_kw"`
	CarbonReductionPct  Ratio     `json:"carbon_reduction_pct"` // offset / gross
	AnnualNetEmissionsT float64   `json:"annual_net_emissions_t"`
	WindowHours         int       `json:"window_hours"`
}

// ComputeKPIs derives the indicators from the records and the carbon account.
func ComputeKPIs(records []model.BalanceRecord, carbon Carbon) (KPIs, error) {
	if len(records) == 0 {
		return KPIs{}, fmt.Errorf("kpi: no balance records: %w", model.ErrInsufficientData)
	}

	consumption := make([]float64, len(records))
	solar := make([]float64, len(records))
	for i, r := range records {
		consumption[i] = r.TotalConsumptionKW
		solar[i] = r.SolarKW
	}

	peakIdx := floats.MaxIdx(consumption)
	peak := consumption[peakIdx]

	return KPIs{
		RenewableSharePct:   percent(ratio(floats.Sum(solar), floats.Sum(consumption))),
		PeakDemandKW:        peak,
		LoadFactor:          ratio(stat.Mean(consumption, nil), peak),
		AverageSolarKW:      stat.Mean(solar, nil),
		CarbonReductionPct:  percent(ratio(carbon.CarbonOffsetKg, carbon.GrossEmissionsKg)),
		AnnualNetEmissionsT: carbon.AnnualNetTonnes(),
		PeakDemandAt:        records[peakIdx].Timestamp,
		WindowHours:         len(records),
	}, nil
}

func percent(r Ratio) Ratio {
	if r.Defined {
		r.Value *= 100
	}
	return r
}
