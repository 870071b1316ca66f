package simulator

import (
	"fmt"
	"math"
	"time"

	"building_twin/internal/model"
)

const absoluteZeroC = -273.15

// HVACConfig holds the climate-control parameters.
type HVACConfig struct {
	SetPointC     float64 `yaml:"set_point_c" json:"set_point_c"`
	Efficiency    float64 `yaml:"efficiency" json:"efficiency"` // (0, 1]
	RatedPowerKW  float64 `yaml:"rated_power_kw" json:"rated_power_kw"`
	ExternalTempC float64 `yaml:"external_temp_c" json:"external_temp_c"`
}

func DefaultHVACConfig() HVACConfig {
	return HVACConfig{
		SetPointC:     24,
		Efficiency:    0.85,
		RatedPowerKW:  50,
		ExternalTempC: 30,
	}
}

func (c HVACConfig) Validate() error {
	if !(c.Efficiency > 0 && c.Efficiency <= 1) {
		return fmt.Errorf("hvac: efficiency %v outside (0, 1]: %w", c.Efficiency, model.ErrInvalidArgument)
	}
	if !(c.RatedPowerKW > 0) {
		return fmt.Errorf("hvac: rated power %v kW: %w", c.RatedPowerKW, model.ErrInvalidArgument)
	}
	if !validTemp(c.SetPointC) || !validTemp(c.ExternalTempC) {
		return fmt.Errorf("hvac: implausible temperature: %w", model.ErrInvalidArgument)
	}
	return nil
}

// Load returns the HVAC electrical load in kW at the nominal set-point.
func (c HVACConfig) Load(tempC float64, occupancy int) (float64, error) {
	return c.LoadAt(c.SetPointC, tempC, occupancy)
}

// LoadAt returns the load for an arbitrary set-point:
//
//	(2·|t − sp| + 0.1·occupancy + 0.05·(external − sp)) / efficiency
//
// clamped to [0, rated power].
func (c HVACConfig) LoadAt(setPointC, tempC float64, occupancy int) (float64, error) {
	if !validTemp(tempC) || !validTemp(setPointC) {
		return 0, fmt.Errorf("hvac: implausible temperature %v°C: %w", tempC, model.ErrInvalidArgument)
	}
	if occupancy < 0 {
		return 0, fmt.Errorf("hvac: negative occupancy %d: %w", occupancy, model.ErrInvalidArgument)
	}

	deviation := math.Abs(tempC - setPointC)
	occupancyLoad := 0.1 * float64(occupancy)
	externalLoad := 0.05 * (c.ExternalTempC - setPointC)

	load := (2*deviation + occupancyLoad + externalLoad) / c.Efficiency
	return math.Min(math.Max(load, 0), c.RatedPowerKW), nil
}

// Recommendation is an advisory set-point for one forecast hour.
type Recommendation struct {
	Timestamp            time.Time `json:"timestamp"`
	RecommendedSetPointC float64   `json:"recommended_temp"`
	PredictedLoadKW      float64   `json:"predicted_load"`
}

// unoccupiedRelaxationC is added to the set-point while nobody is inside.
const unoccupiedRelaxationC = 2

// Recommend relaxes the set-point for unoccupied hours and pairs each
// recommendation with the load it implies. The result is advisory only: the
// energy balance always uses the nominal set-point.
func (c HVACConfig) Recommend(forecast []model.Observation) ([]Recommendation, error) {
	recs := make([]Recommendation, len(forecast))
	for i, o := range forecast {
		sp := c.SetPointC
		if o.Occupancy == 0 {
			sp += unoccupiedRelaxationC
		}
		load, err := c.LoadAt(sp, o.TemperatureC, o.Occupancy)
		if err != nil {
			return nil, fmt.Errorf("recommendation at %s: %w", o.Timestamp.Format(time.RFC3339), err)
		}
		recs[i] = Recommendation{
			Timestamp:            o.Timestamp,
			RecommendedSetPointC: sp,
			PredictedLoadKW:      load,
		}
	}
	return recs, nil
}

func validTemp(c float64) bool {
	return !math.IsNaN(c) && !math.IsInf(c, 0) && c >= absoluteZeroC
}
