package simulator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/solar"
	"building_twin/internal/synth"
)

// DefaultHours is one week of hourly observations.
const DefaultHours = 24 * 7

// PCG stream ids; synthesis and base load draw from separate streams so the
// environment of a seed does not depend on aggregator draws.
const (
	streamEnvironment uint64 = iota
	streamBaseLoad
)

// Config is the full, immutable description of a simulated building.
type Config struct {
	Seed       uint64            `yaml:"seed" json:"seed"`
	Hours      int               `yaml:"hours" json:"hours"`
	Synth      synth.Config      `yaml:"environment" json:"environment"`
	HVAC       HVACConfig        `yaml:"hvac" json:"hvac"`
	Lighting   LightingConfig    `yaml:"lighting" json:"lighting"`
	Solar      solar.Config      `yaml:"solar" json:"solar"`
	BaseLoad   BaseLoadConfig    `yaml:"base_load" json:"base_load"`
	Assessment assessment.Config `yaml:"assessment" json:"assessment"`
}

func DefaultConfig() Config {
	m := DefaultModels()
	return Config{
		Seed:       1,
		Hours:      DefaultHours,
		Synth:      synth.DefaultConfig(),
		HVAC:       m.HVAC,
		Lighting:   m.Lighting,
		Solar:      m.Solar,
		BaseLoad:   m.BaseLoad,
		Assessment: assessment.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Hours <= 0 {
		errs = append(errs, fmt.Errorf("hours %d: %w", c.Hours, model.ErrInvalidArgument))
	}
	errs = append(errs, c.Synth.Validate(), c.Models().Validate(), c.Assessment.Validate())
	return errors.Join(errs...)
}

// Models returns the subsystem part of the configuration.
func (c Config) Models() Models {
	return Models{
		HVAC:     c.HVAC,
		Lighting: c.Lighting,
		Solar:    c.Solar,
		BaseLoad: c.BaseLoad,
	}
}

// Clock supplies the reference end time of a run.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

type Option func(*Engine)

// WithLogger routes stage logging to l. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// Result is everything a run produces. Consumers must treat it as read-only.
type Result struct {
	Seed       uint64                `json:"seed"`
	Records    []model.BalanceRecord `json:"series"`
	Compliance assessment.Compliance `json:"compliance"`
	Carbon     assessment.Carbon     `json:"carbon"`
}

// Engine sequences synthesis, balance and assessment. It holds only
// configuration, so one Engine may serve concurrent runs.
type Engine struct {
	cfg      Config
	assessor *assessment.Assessor
	clock    Clock
	log      *slog.Logger
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	assessor, err := assessment.New(cfg.Assessment)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		assessor: assessor,
		clock:    SystemClock{},
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// WithSeed returns a copy of the engine that runs with a different seed.
func (e *Engine) WithSeed(seed uint64) *Engine {
	cp := *e
	cp.cfg.Seed = seed
	return &cp
}

// Run simulates hours of building operation ending at the current hour and
// assesses the result. Equal seeds and clocks give equal results.
func (e *Engine) Run(hours int) (Result, error) {
	started := time.Now()
	end := e.clock.Now().Truncate(model.Step)

	series, err := synth.Generate(e.cfg.Synth, end, hours, e.rng(streamEnvironment))
	if err != nil {
		return Result{}, fmt.Errorf("synthesizing environment: %w", err)
	}
	e.log.Debug("environment synthesized", "hours", hours, "end", end)

	records, err := Balance(series, e.cfg.Models(), e.rng(streamBaseLoad))
	if err != nil {
		return Result{}, fmt.Errorf("computing energy balance: %w", err)
	}
	e.log.Debug("energy balance computed", "records", len(records))

	compliance, err := e.assessor.AssessCompliance(records)
	if err != nil {
		return Result{}, fmt.Errorf("assessing compliance: %w", err)
	}
	carbon, err := e.assessor.AssessCarbon(records)
	if err != nil {
		return Result{}, fmt.Errorf("assessing carbon: %w", err)
	}

	e.log.Info("simulation complete",
		"seed", e.cfg.Seed,
		"hours", hours,
		"epi", compliance.EPI,
		"compliant", compliance.Compliant,
		"net_emissions_kg", carbon.NetEmissionsKg,
		"elapsed", time.Since(started),
	)

	return Result{
		Seed:       e.cfg.Seed,
		Records:    records,
		Compliance: compliance,
		Carbon:     carbon,
	}, nil
}

// Recommend returns advisory HVAC set-points for the observations of a run.
// They are not applied to the run's balance.
func (e *Engine) Recommend(records []model.BalanceRecord) ([]Recommendation, error) {
	return e.cfg.HVAC.Recommend(model.Observations(records))
}

func (e *Engine) rng(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(e.cfg.Seed, stream))
}
