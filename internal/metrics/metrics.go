// Package metrics exposes the outcome of simulation runs to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"building_twin/internal/assessment"
	"building_twin/internal/simulator"
)

// Recorder bundles the twin's metrics. Gauges describe the latest
// successful run.
type Recorder struct {
	RunsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	EPI            prometheus.Gauge
	EPILimit       prometheus.Gauge
	Compliant      prometheus.Gauge
	GrossEmissions prometheus.Gauge
	CarbonOffset   prometheus.Gauge
	NetEmissions   prometheus.Gauge
	PeakDemand     prometheus.Gauge
	RenewableShare prometheus.Gauge
}

// New constructs the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	m := &Recorder{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twin_runs_total",
				Help: "Total simulation runs by result",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twin_run_duration_seconds",
			Help:    "Simulation run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		EPI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_epi_kwh_per_m2_year",
			Help: "Energy performance index of the latest run",
		}),
		EPILimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_epi_limit_kwh_per_m2_year",
			Help: "Regulatory EPI limit",
		}),
		Compliant: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_compliant",
			Help: "1 if the latest run meets the EPI limit",
		}),
		GrossEmissions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_gross_emissions_kg",
			Help: "Gross emissions over the simulated window",
		}),
		CarbonOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_carbon_offset_kg",
			Help: "Emissions offset by exported generation over the simulated window",
		}),
		NetEmissions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_net_emissions_kg",
			Help: "Net emissions over the simulated window",
		}),
		PeakDemand: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_peak_demand_kw",
			Help: "Peak total consumption of the latest run",
		}),
		RenewableShare: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_renewable_share_percent",
			Help: "Solar generation as a share of consumption",
		}),
	}
	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.EPI,
		m.EPILimit,
		m.Compliant,
		m.GrossEmissions,
		m.CarbonOffset,
		m.NetEmissions,
		m.PeakDemand,
		m.RenewableShare,
	)
	return m
}

// ObserveRun records a successful run.
func (m *Recorder) ObserveRun(res simulator.Result, kpis assessment.KPIs, elapsed time.Duration) {
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.RunDuration.Observe(elapsed.Seconds())

	m.EPI.Set(res.Compliance.EPI)
	m.EPILimit.Set(res.Compliance.RegulatoryLimit)
	if res.Compliance.Compliant {
		m.Compliant.Set(1)
	} else {
		m.Compliant.Set(0)
	}
	m.GrossEmissions.Set(res.Carbon.GrossEmissionsKg)
	m.CarbonOffset.Set(res.Carbon.CarbonOffsetKg)
	m.NetEmissions.Set(res.Carbon.NetEmissionsKg)
	m.PeakDemand.Set(kpis.PeakDemandKW)
	if v, err := kpis.RenewableSharePct.Get(); err == nil {
		m.RenewableShare.Set(v)
	}
}

// ObserveFailure records a run that returned an error.
func (m *Recorder) ObserveFailure(elapsed time.Duration) {
	m.RunsTotal.WithLabelValues("error").Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
