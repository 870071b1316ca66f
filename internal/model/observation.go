package model

import "time"

// Step is the fixed spacing between consecutive observations.
const Step = time.Hour

// Observation is one hourly snapshot of ambient conditions and occupancy.
type Observation struct {
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperature"`
	HumidityPct  float64   `json:"humidity"`
	AmbientLux   float64   `json:"ambient_light"`
	Occupancy    int       `json:"occupancy"`
}

// BalanceRecord joins an Observation with the loads, generation and grid
// exchange computed for it. With an hourly step each kW value also equals
// the kWh for that hour.
type BalanceRecord struct {
	Observation

	HVACKW             float64 `json:"hvac_consumption"`
	LightingKW         float64 `json:"lighting_consumption"`
	BaseKW             float64 `json:"base_load"`
	SolarKW            float64 `json:"solar_generation"`
	TotalConsumptionKW float64 `json:"total_consumption"`
	NetEnergyKW        float64 `json:"net_energy"`
	GridImportKW       float64 `json:"grid_import"`
	GridExportKW       float64 `json:"grid_export"`
}

// NewBalanceRecord derives total, net and the grid split from the subsystem
// values. Import and export are never both nonzero.
func NewBalanceRecord(obs Observation, hvac, lighting, base, solar float64) BalanceRecord {
	total := hvac + lighting + base
	net := total - solar

	rec := BalanceRecord{
		Observation:        obs,
		HVACKW:             hvac,
		LightingKW:         lighting,
		BaseKW:             base,
		SolarKW:            solar,
		TotalConsumptionKW: total,
		NetEnergyKW:        net,
	}
	if net > 0 {
		rec.GridImportKW = net
	} else if net < 0 {
		rec.GridExportKW = -net
	}
	return rec
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}

// SpanOf returns the first and last timestamps of records.
func SpanOf(records []BalanceRecord) (TimeRange, bool) {
	if len(records) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{
		Start: records[0].Timestamp,
		End:   records[len(records)-1].Timestamp,
	}, true
}

// Observations strips the computed columns from records.
func Observations(records []BalanceRecord) []Observation {
	out := make([]Observation, len(records))
	for i, r := range records {
		out[i] = r.Observation
	}
	return out
}
