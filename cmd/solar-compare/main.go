package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/cheggaaa/pb.v1"

	"building_twin/internal/assessment"
	"building_twin/internal/config"
	"building_twin/internal/simulator"
)

type result struct {
	capacity float64
	imported float64
	exported float64
	res      simulator.Result
	kpis     assessment.KPIs
}

func main() {
	configPath := flag.String("config", "", "YAML building description (default $TWIN_CONFIG)")
	capsFlag := flag.String("capacities", "0,25,50,100,150,200,300", "comma-separated PV capacities in kW")
	hours := flag.Int("hours", 0, "simulated hours (default from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *hours != 0 {
		cfg.Hours = *hours
	}

	capacities, err := parseCapacities(*capsFlag)
	if err != nil {
		log.Fatalf("Invalid capacities %q: %v", *capsFlag, err)
	}
	sort.Float64s(capacities)

	results, err := sweep(cfg, capacities, os.Stderr)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	printTable(os.Stdout, cfg, results)
}

// sweep runs the same seed and end hour once per capacity so only the PV
// size differs.
func sweep(cfg simulator.Config, capacities []float64, progress io.Writer) ([]result, error) {
	clock := simulator.FixedClock(time.Now().UTC())
	bar := pb.New(len(capacities))
	bar.Output = progress
	bar.ShowTimeLeft = false
	bar.Start()
	defer bar.Finish()

	results := make([]result, 0, len(capacities))
	for _, c := range capacities {
		cfg.Solar.CapacityKW = c
		engine, err := simulator.New(cfg, simulator.WithClock(clock))
		if err != nil {
			return nil, fmt.Errorf("capacity %.1f kW: %w", c, err)
		}
		res, err := engine.Run(cfg.Hours)
		if err != nil {
			return nil, fmt.Errorf("capacity %.1f kW: %w", c, err)
		}
		kpis, err := assessment.ComputeKPIs(res.Records, res.Carbon)
		if err != nil {
			return nil, fmt.Errorf("capacity %.1f kW: %w", c, err)
		}

		r := result{capacity: c, res: res, kpis: kpis}
		for _, rec := range res.Records {
			r.imported += rec.GridImportKW
			r.exported += rec.GridExportKW
		}
		results = append(results, r)
		bar.Increment()
	}
	return results, nil
}

func printTable(w io.Writer, cfg simulator.Config, results []result) {
	if len(results) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "PV Capacity Comparison")
	fmt.Fprintf(w, "  Seed: %d, window: %d h, emission factor: %.2f kgCO2/kWh\n",
		cfg.Seed, cfg.Hours, cfg.Assessment.EmissionFactor)
	fmt.Fprintln(w)

	fmt.Fprintf(w, " %8s │ %11s │ %11s │ %11s │ %9s │ %9s │ %12s\n",
		"PV", "Grid Import", "Grid Export", "Net CO2", "Renewable", "Reduction", "Marginal CO2")
	fmt.Fprintf(w, "──────────┼─────────────┼─────────────┼─────────────┼───────────┼───────────┼──────────────\n")

	for i, r := range results {
		marginal := "-"
		if i > 0 {
			prev := results[i-1]
			if dCap := r.capacity - prev.capacity; dCap > 0 {
				m := (prev.res.Carbon.NetEmissionsKg - r.res.Carbon.NetEmissionsKg) / dCap
				marginal = fmt.Sprintf("%.2f kg/kW", m)
			}
		}

		fmt.Fprintf(w, " %5.1f kW │ %7.1f kWh │ %7.1f kWh │ %8.1f kg │ %8s%% │ %8s%% │ %12s\n",
			r.capacity,
			r.imported,
			r.exported,
			r.res.Carbon.NetEmissionsKg,
			r.kpis.RenewableSharePct.Format(1),
			r.kpis.CarbonReductionPct.Format(1),
			marginal,
		)
	}
	fmt.Fprintln(w)
}

func parseCapacities(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	caps := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("capacity must not be negative, got %v", v)
		}
		caps = append(caps, v)
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("no capacities specified")
	}
	return caps, nil
}
