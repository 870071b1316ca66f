// Package synth generates synthetic hourly ambient conditions and occupancy
// for a building: a diurnal temperature cycle, inversely coupled humidity,
// a daylight curve and an office-hours headcount.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"building_twin/internal/model"
)

const cycleHours = 24

// Config holds the shape parameters of the synthetic environment.
type Config struct {
	BaseTempC        float64 `yaml:"base_temp_c" json:"base_temp_c"`
	AmplitudeC       float64 `yaml:"amplitude_c" json:"amplitude_c"`
	TempNoiseC       float64 `yaml:"temp_noise_c" json:"temp_noise_c"`
	HumidityBasePct  float64 `yaml:"humidity_base_pct" json:"humidity_base_pct"`
	HumidityNoisePct float64 `yaml:"humidity_noise_pct" json:"humidity_noise_pct"`

	PeakLux          float64 `yaml:"peak_lux" json:"peak_lux"`
	DaylightNoiseLux float64 `yaml:"daylight_noise_lux" json:"daylight_noise_lux"`
	NightLux         float64 `yaml:"night_lux" json:"night_lux"`
	NightNoiseLux    float64 `yaml:"night_noise_lux" json:"night_noise_lux"`

	// Office hours, inclusive, as hour-of-cycle.
	OccupancyStartHour  int     `yaml:"occupancy_start_hour" json:"occupancy_start_hour"`
	OccupancyEndHour    int     `yaml:"occupancy_end_hour" json:"occupancy_end_hour"`
	PeakOccupancy       float64 `yaml:"peak_occupancy" json:"peak_occupancy"`
	BackgroundOccupancy float64 `yaml:"background_occupancy" json:"background_occupancy"` // Poisson mean outside office hours
}

// DefaultConfig returns the reference office-building environment.
func DefaultConfig() Config {
	return Config{
		BaseTempC:           25,
		AmplitudeC:          5,
		TempNoiseC:          1,
		HumidityBasePct:     60,
		HumidityNoisePct:    3,
		PeakLux:             800,
		DaylightNoiseLux:    50,
		NightLux:            10,
		NightNoiseLux:       5,
		OccupancyStartHour:  8,
		OccupancyEndHour:    18,
		PeakOccupancy:       20,
		BackgroundOccupancy: 2,
	}
}

// Validate reports malformed parameters.
func (c Config) Validate() error {
	switch {
	case c.TempNoiseC < 0, c.HumidityNoisePct < 0, c.DaylightNoiseLux < 0, c.NightNoiseLux < 0:
		return fmt.Errorf("synth: noise must be non-negative: %w", model.ErrInvalidArgument)
	case c.PeakLux < 0, c.NightLux < 0:
		return fmt.Errorf("synth: illuminance must be non-negative: %w", model.ErrInvalidArgument)
	case c.PeakOccupancy < 0, c.BackgroundOccupancy < 0:
		return fmt.Errorf("synth: occupancy must be non-negative: %w", model.ErrInvalidArgument)
	case c.OccupancyStartHour < 0, c.OccupancyEndHour >= cycleHours, c.OccupancyStartHour > c.OccupancyEndHour:
		return fmt.Errorf("synth: office hours %d-%d out of range: %w",
			c.OccupancyStartHour, c.OccupancyEndHour, model.ErrInvalidArgument)
	}
	return nil
}

// Generate produces exactly hours observations, one per hour, the last one
// stamped end. rng is the only source of randomness, so equal seeds yield
// equal series.
func Generate(cfg Config, end time.Time, hours int, rng *rand.Rand) ([]model.Observation, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("synth: horizon %d hours: %w", hours, model.ErrInvalidArgument)
	}
	if rng == nil {
		return nil, fmt.Errorf("synth: nil random source: %w", model.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tempNoise := distuv.Normal{Mu: 0, Sigma: cfg.TempNoiseC, Src: rng}
	humNoise := distuv.Normal{Mu: 0, Sigma: cfg.HumidityNoisePct, Src: rng}
	dayNoise := distuv.Normal{Mu: 0, Sigma: cfg.DaylightNoiseLux, Src: rng}
	nightLux := distuv.Normal{Mu: cfg.NightLux, Sigma: cfg.NightNoiseLux, Src: rng}
	background := distuv.Poisson{Lambda: cfg.BackgroundOccupancy, Src: rng}

	start := end.Add(-time.Duration(hours-1) * model.Step)
	series := make([]model.Observation, hours)
	for i := range series {
		h := i % cycleHours

		temp := cfg.BaseTempC + cfg.AmplitudeC*math.Sin(2*math.Pi*float64(i)/cycleHours) + tempNoise.Rand()
		humidity := cfg.HumidityBasePct - (temp - cfg.BaseTempC) + humNoise.Rand()

		var lux float64
		if h < cycleHours/2 {
			lux = cfg.PeakLux*math.Sin(math.Pi*float64(i)/(cycleHours/2)) + dayNoise.Rand()
		} else {
			lux = nightLux.Rand()
		}

		var occupancy int
		if h >= cfg.OccupancyStartHour && h <= cfg.OccupancyEndHour {
			occupancy = int(cfg.PeakOccupancy * math.Sin(math.Pi*float64(h)/(cycleHours/2)))
		} else if cfg.BackgroundOccupancy > 0 {
			occupancy = int(background.Rand())
		}

		series[i] = model.Observation{
			Timestamp:    start.Add(time.Duration(i) * model.Step),
			TemperatureC: temp,
			HumidityPct:  humidity,
			AmbientLux:   math.Max(0, lux),
			Occupancy:    max(0, occupancy),
		}
	}
	return series, nil
}
