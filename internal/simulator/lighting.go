package simulator

import (
	"fmt"
	"math"

	"building_twin/internal/model"
)

// LightingConfig holds the artificial-lighting installation.
type LightingConfig struct {
	Fixtures             int     `yaml:"fixtures" json:"fixtures"`
	KWPerFixture         float64 `yaml:"kw_per_fixture" json:"kw_per_fixture"`
	DaylightThresholdLux float64 `yaml:"daylight_threshold_lux" json:"daylight_threshold_lux"`
}

func DefaultLightingConfig() LightingConfig {
	return LightingConfig{
		Fixtures:             100,
		KWPerFixture:         0.04,
		DaylightThresholdLux: 300,
	}
}

func (c LightingConfig) Validate() error {
	if c.Fixtures < 0 || c.KWPerFixture < 0 {
		return fmt.Errorf("lighting: negative installation size: %w", model.ErrInvalidArgument)
	}
	if !(c.DaylightThresholdLux > 0) {
		return fmt.Errorf("lighting: daylight threshold %v lux: %w", c.DaylightThresholdLux, model.ErrInvalidArgument)
	}
	return nil
}

// RatedKW is the load with every fixture at full power.
func (c LightingConfig) RatedKW() float64 {
	return float64(c.Fixtures) * c.KWPerFixture
}

// Load returns the lighting load in kW. Lights are off when nobody is inside
// and when daylight reaches the threshold; in between they dim linearly.
func (c LightingConfig) Load(ambientLux float64, occupancy int) (float64, error) {
	if ambientLux < 0 || math.IsNaN(ambientLux) {
		return 0, fmt.Errorf("lighting: ambient light %v lux: %w", ambientLux, model.ErrInvalidArgument)
	}
	if occupancy < 0 {
		return 0, fmt.Errorf("lighting: negative occupancy %d: %w", occupancy, model.ErrInvalidArgument)
	}
	if occupancy == 0 || ambientLux >= c.DaylightThresholdLux {
		return 0, nil
	}
	dimming := 1 - ambientLux/c.DaylightThresholdLux
	return c.RatedKW() * dimming, nil
}
