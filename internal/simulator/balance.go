package simulator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"building_twin/internal/model"
	"building_twin/internal/solar"
)

// BaseLoadConfig models always-on equipment (lifts, servers, plug loads).
type BaseLoadConfig struct {
	MeanKW  float64 `yaml:"mean_kw" json:"mean_kw"`
	NoiseKW float64 `yaml:"noise_kw" json:"noise_kw"`
}

func DefaultBaseLoadConfig() BaseLoadConfig {
	return BaseLoadConfig{MeanKW: 3, NoiseKW: 0.2}
}

func (c BaseLoadConfig) Validate() error {
	if c.MeanKW < 0 || c.NoiseKW < 0 {
		return fmt.Errorf("base load: negative parameter: %w", model.ErrInvalidArgument)
	}
	return nil
}

// Models groups the subsystem configurations used by Balance.
type Models struct {
	HVAC     HVACConfig
	Lighting LightingConfig
	Solar    solar.Config
	BaseLoad BaseLoadConfig
}

func DefaultModels() Models {
	return Models{
		HVAC:     DefaultHVACConfig(),
		Lighting: DefaultLightingConfig(),
		Solar:    solar.DefaultConfig(),
		BaseLoad: DefaultBaseLoadConfig(),
	}
}

func (m Models) Validate() error {
	return errors.Join(
		m.HVAC.Validate(),
		m.Lighting.Validate(),
		m.Solar.Validate(),
		m.BaseLoad.Validate(),
	)
}

// Balance computes one BalanceRecord per observation. Every row depends only
// on its own observation and one base-load draw from rng.
func Balance(series []model.Observation, m Models, rng *rand.Rand) ([]model.BalanceRecord, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("balance: empty series: %w", model.ErrInsufficientData)
	}
	if rng == nil {
		return nil, fmt.Errorf("balance: nil random source: %w", model.ErrInvalidArgument)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	base := distuv.Normal{Mu: m.BaseLoad.MeanKW, Sigma: m.BaseLoad.NoiseKW, Src: rng}

	records := make([]model.BalanceRecord, len(series))
	for i, o := range series {
		hvac, err := m.HVAC.Load(o.TemperatureC, o.Occupancy)
		if err != nil {
			return nil, rowError(o, err)
		}
		lighting, err := m.Lighting.Load(o.AmbientLux, o.Occupancy)
		if err != nil {
			return nil, rowError(o, err)
		}
		pv, err := m.Solar.Generate(o.AmbientLux)
		if err != nil {
			return nil, rowError(o, err)
		}
		records[i] = model.NewBalanceRecord(o, hvac, lighting, math.Max(0, base.Rand()), pv)
	}
	return records, nil
}

func rowError(o model.Observation, err error) error {
	return fmt.Errorf("balance at %s: %w", o.Timestamp.Format(time.RFC3339), err)
}
