// Package report renders human-readable summaries of a simulation run.
package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"building_twin/internal/assessment"
	"building_twin/internal/simulator"
	"building_twin/internal/solar"
)

const rule = 80

// Recommendations returns the optimization advice for a run. Capacity and
// controls advice is only given to non-compliant buildings.
func Recommendations(c assessment.Compliance) []string {
	var recs []string
	if !c.Compliant {
		recs = append(recs,
			"Increase solar capacity or improve system efficiency",
			"Implement advanced occupancy-based controls",
		)
	}
	return append(recs,
		"Consider energy storage for peak shaving",
		"Implement predictive maintenance protocols",
	)
}

// WriteSummary writes the performance summary and KPI block.
func WriteSummary(w io.Writer, res simulator.Result, kpis assessment.KPIs) error {
	p := message.NewPrinter(language.English)
	c, cb := res.Compliance, res.Carbon

	var b strings.Builder
	line := strings.Repeat("=", rule)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "DIGITAL TWIN PERFORMANCE SUMMARY REPORT")
	fmt.Fprintln(&b, line)

	fmt.Fprintln(&b, "\nENERGY PERFORMANCE:")
	p.Fprintf(&b, "   - Annual Energy Consumption: %.0f kWh\n", c.AnnualConsumptionKWh)
	p.Fprintf(&b, "   - Energy Performance Index (EPI): %.1f kWh/m²/year\n", c.EPI)
	p.Fprintf(&b, "   - EPI Limit: %.0f kWh/m²/year\n", c.RegulatoryLimit)
	fmt.Fprintf(&b, "   - Compliance: %s\n", verdict(c.Compliant))
	if !c.Compliant {
		p.Fprintf(&b, "   - Required Energy Savings: %.0f kWh/year\n", c.RequiredSavingsKWh)
	}

	fmt.Fprintln(&b, "\nSUSTAINABILITY METRICS:")
	fmt.Fprintf(&b, "   - Annual Net CO2 Emissions: %.1f tonnes\n", cb.AnnualNetTonnes())
	fmt.Fprintf(&b, "   - Carbon Offset (window): %.1f kg CO2\n", cb.CarbonOffsetKg)
	fmt.Fprintf(&b, "   - Carbon Reduction vs Grid: %s\n", pct(kpis.CarbonReductionPct))

	fmt.Fprintln(&b, "\nOPTIMIZATION RECOMMENDATIONS:")
	for _, r := range Recommendations(c) {
		fmt.Fprintf(&b, "   - %s\n", r)
	}
	fmt.Fprintln(&b, line)

	fmt.Fprintln(&b, "\nKey Performance Indicators (KPIs):")
	fmt.Fprintf(&b, "Renewable Share: %s\n", pct(kpis.RenewableSharePct))
	fmt.Fprintf(&b, "Peak Demand: %.1f kW at %s\n", kpis.PeakDemandKW, kpis.PeakDemandAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Load Factor: %s\n", kpis.LoadFactor.Format(2))
	fmt.Fprintf(&b, "Solar Utilization: %.1f kW average generation\n", kpis.AverageSolarKW)
	if prof := solar.BuildProfile(res.Records); prof.HourlyKW[prof.PeakHour] > 0 {
		fmt.Fprintf(&b, "Solar Peak Hour: %02d:00 (%.1f kW mean)\n", prof.PeakHour, prof.HourlyKW[prof.PeakHour])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRecommendations writes advisory HVAC set-points, one per line.
func WriteRecommendations(w io.Writer, recs []simulator.Recommendation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-17s %10s %12s\n", "time", "set-point", "load (kW)")
	for _, r := range recs {
		fmt.Fprintf(&b, "%-17s %9.1f° %12.2f\n", r.Timestamp.Format("2006-01-02 15:04"), r.RecommendedSetPointC, r.PredictedLoadKW)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func pct(r assessment.Ratio) string {
	if !r.Defined {
		return r.Format(1)
	}
	return r.Format(1) + "%"
}

func verdict(compliant bool) string {
	if compliant {
		return "COMPLIANT"
	}
	return "NON-COMPLIANT"
}
