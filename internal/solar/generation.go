package solar

import (
	"fmt"
	"math"

	"building_twin/internal/model"
)

// Config describes the rooftop PV installation.
type Config struct {
	CapacityKW      float64 `yaml:"capacity_kw" json:"capacity_kw"`
	PanelEfficiency float64 `yaml:"panel_efficiency" json:"panel_efficiency"`
	AreaM2          float64 `yaml:"area_m2" json:"area_m2"`
	WeatherFactor   float64 `yaml:"weather_factor" json:"weather_factor"`
	// Lux to W/m² conversion and the irradiance cap that maps to full output.
	LuxToIrradiance float64 `yaml:"lux_to_irradiance" json:"lux_to_irradiance"`
	MaxIrradiance   float64 `yaml:"max_irradiance" json:"max_irradiance"`
}

func DefaultConfig() Config {
	return Config{
		CapacityKW:      100,
		PanelEfficiency: 0.18,
		AreaM2:          500,
		WeatherFactor:   0.9,
		LuxToIrradiance: 0.1,
		MaxIrradiance:   1000,
	}
}

func (c Config) Validate() error {
	if c.CapacityKW < 0 {
		return fmt.Errorf("solar: capacity %v kW: %w", c.CapacityKW, model.ErrInvalidArgument)
	}
	if c.WeatherFactor < 0 || c.WeatherFactor > 1 {
		return fmt.Errorf("solar: weather factor %v outside [0, 1]: %w", c.WeatherFactor, model.ErrInvalidArgument)
	}
	if c.PanelEfficiency < 0 || c.PanelEfficiency > 1 {
		return fmt.Errorf("solar: panel efficiency %v outside [0, 1]: %w", c.PanelEfficiency, model.ErrInvalidArgument)
	}
	if !(c.LuxToIrradiance > 0) || !(c.MaxIrradiance > 0) {
		return fmt.Errorf("solar: irradiance conversion must be positive: %w", model.ErrInvalidArgument)
	}
	return nil
}

// Irradiance converts ambient light to an approximate irradiance in W/m²,
// capped at MaxIrradiance.
func (c Config) Irradiance(ambientLux float64) float64 {
	return math.Min(ambientLux*c.LuxToIrradiance, c.MaxIrradiance)
}

// Generate returns the PV output in kW for one sample. Samples are
// independent: no thermal lag or ramping is modeled.
func (c Config) Generate(ambientLux float64) (float64, error) {
	if ambientLux < 0 || math.IsNaN(ambientLux) {
		return 0, fmt.Errorf("solar: ambient light %v lux: %w", ambientLux, model.ErrInvalidArgument)
	}
	power := c.Irradiance(ambientLux) / c.MaxIrradiance * c.CapacityKW * c.WeatherFactor
	return math.Max(0, power), nil
}
