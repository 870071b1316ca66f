// Package assessment scores a simulated window against a regulatory energy
// performance limit and a grid emission factor.
//
// Annual figures are a linear extrapolation: the observed window is assumed
// to repeat uniformly across the year. A window that is not a whole number
// of weeks is scaled by the same ratio, which is an approximation and not a
// seasonal simulation.
package assessment

import (
	"fmt"
	"math"

	"building_twin/internal/model"
)

const hoursPerWeek = 168

// Config holds the regulatory and site parameters.
type Config struct {
	EPILimit       float64 `yaml:"epi_limit" json:"epi_limit"` // kWh/m²/year
	BuildingAreaM2 float64 `yaml:"building_area_m2" json:"building_area_m2"`
	EmissionFactor float64 `yaml:"emission_factor" json:"emission_factor"` // kgCO2/kWh
	WeeksPerYear   float64 `yaml:"weeks_per_year" json:"weeks_per_year"`
}

// DefaultConfig returns the ECBC office limit and Indian grid factor.
func DefaultConfig() Config {
	return Config{
		EPILimit:       200,
		BuildingAreaM2: 5000,
		EmissionFactor: 0.82,
		WeeksPerYear:   52,
	}
}

func (c Config) Validate() error {
	if !(c.EPILimit > 0) {
		return fmt.Errorf("assessment: EPI limit %v: %w", c.EPILimit, model.ErrInvalidArgument)
	}
	if !(c.BuildingAreaM2 > 0) {
		return fmt.Errorf("assessment: building area %v m²: %w", c.BuildingAreaM2, model.ErrInvalidArgument)
	}
	if c.EmissionFactor < 0 || math.IsNaN(c.EmissionFactor) {
		return fmt.Errorf("assessment: emission factor %v: %w", c.EmissionFactor, model.ErrInvalidArgument)
	}
	if !(c.WeeksPerYear > 0) {
		return fmt.Errorf("assessment: weeks per year %v: %w", c.WeeksPerYear, model.ErrInvalidArgument)
	}
	return nil
}

// ExtrapolationFactor scales a window of n hourly records to a year:
// weeks-per-year ÷ weeks-in-window. A one-week window scales by 52.
func (c Config) ExtrapolationFactor(n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("assessment: empty window: %w", model.ErrInsufficientData)
	}
	weeks := float64(n) * model.Step.Hours() / hoursPerWeek
	return c.WeeksPerYear / weeks, nil
}

// Compliance is the energy-performance verdict for one run.
type Compliance struct {
	AnnualConsumptionKWh float64 `json:"annual_consumption"`
	EPI                  float64 `json:"energy_performance_index"`
	RegulatoryLimit      float64 `json:"regulatory_limit"`
	Compliant            bool    `json:"is_compliant"`
	RequiredSavingsKWh   float64 `json:"required_savings"`
}

// Carbon is the emissions account for one run. Net emissions are negative
// when exported generation outweighs imports.
type Carbon struct {
	GrossEmissionsKg         float64 `json:"gross_emissions"`
	CarbonOffsetKg           float64 `json:"carbon_offset"`
	NetEmissionsKg           float64 `json:"net_emissions"`
	AnnualizedNetEmissionsKg float64 `json:"annualized_net_emissions"`
}

// AnnualNetTonnes converts the annualized net emissions to tonnes.
func (c Carbon) AnnualNetTonnes() float64 {
	return c.AnnualizedNetEmissionsKg / 1000
}

// Assessor is stateless; the same input always yields the same output.
type Assessor struct {
	cfg Config
}

func New(cfg Config) (*Assessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Assessor{cfg: cfg}, nil
}

// AssessCompliance extrapolates total consumption to a year and compares
// the resulting EPI to the regulatory limit.
func (a *Assessor) AssessCompliance(records []model.BalanceRecord) (Compliance, error) {
	totals, err := sumWindow(records)
	if err != nil {
		return Compliance{}, err
	}
	factor, err := a.cfg.ExtrapolationFactor(len(records))
	if err != nil {
		return Compliance{}, err
	}

	annual := totals.consumption * factor
	epi := annual / a.cfg.BuildingAreaM2
	compliant := epi <= a.cfg.EPILimit

	var savings float64
	if !compliant {
		savings = (epi - a.cfg.EPILimit) * a.cfg.BuildingAreaM2
	}

	return Compliance{
		AnnualConsumptionKWh: annual,
		EPI:                  epi,
		RegulatoryLimit:      a.cfg.EPILimit,
		Compliant:            compliant,
		RequiredSavingsKWh:   savings,
	}, nil
}

// AssessCarbon prices grid imports and exports at the emission factor and
// annualizes the net with the same factor used for compliance.
func (a *Assessor) AssessCarbon(records []model.BalanceRecord) (Carbon, error) {
	totals, err := sumWindow(records)
	if err != nil {
		return Carbon{}, err
	}
	factor, err := a.cfg.ExtrapolationFactor(len(records))
	if err != nil {
		return Carbon{}, err
	}

	gross := totals.imported * a.cfg.EmissionFactor
	offset := totals.exported * a.cfg.EmissionFactor
	net := gross - offset

	return Carbon{
		GrossEmissionsKg:         gross,
		CarbonOffsetKg:           offset,
		NetEmissionsKg:           net,
		AnnualizedNetEmissionsKg: net * factor,
	}, nil
}
