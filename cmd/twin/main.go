package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"building_twin/internal/assessment"
	"building_twin/internal/config"
	"building_twin/internal/export"
	"building_twin/internal/report"
	"building_twin/internal/simulator"
)

type options struct {
	configPath string
	hours      int
	seed       uint64
	seedSet    bool
	csvPath    string
	xlsxPath   string
	pdfPath    string
	recommend  bool
	dumpConfig bool
	verbose    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("twin", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "YAML building description (default $TWIN_CONFIG)")
	fs.IntVar(&o.hours, "hours", 0, "simulated hours ending at the current hour (default from config)")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed (default from config)")
	fs.StringVar(&o.csvPath, "csv", "", "write the combined series as CSV to this path")
	fs.StringVar(&o.xlsxPath, "xlsx", "", "write series and summary as XLSX to this path")
	fs.StringVar(&o.pdfPath, "pdf", "", "write a PDF report to this path")
	fs.BoolVar(&o.recommend, "recommend", false, "print advisory HVAC set-points")
	fs.BoolVar(&o.dumpConfig, "dump-config", false, "print the effective configuration as YAML and exit")
	fs.BoolVar(&o.verbose, "v", false, "log simulation stages")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			o.seedSet = true
		}
	})
	return o, nil
}

func run(o options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.seedSet {
		cfg.Seed = o.seed
	}
	if o.hours != 0 {
		cfg.Hours = o.hours
	}

	if o.dumpConfig {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	engine, err := simulator.New(cfg, simulator.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Fprintln(stderr, "Running building energy simulation...")
	res, err := engine.Run(cfg.Hours)
	if err != nil {
		return err
	}
	kpis, err := assessment.ComputeKPIs(res.Records, res.Carbon)
	if err != nil {
		return err
	}

	if err := report.WriteSummary(stdout, res, kpis); err != nil {
		return err
	}

	if o.recommend {
		recs, err := engine.Recommend(res.Records)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, "\nHVAC set-point recommendations:")
		if err := report.WriteRecommendations(stdout, recs); err != nil {
			return err
		}
	}

	if o.csvPath != "" {
		if err := writeFile(o.csvPath, func(w io.Writer) error { return export.WriteCSV(w, res.Records) }); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Data exported to %s\n", o.csvPath)
	}
	if o.xlsxPath != "" {
		if err := writeFile(o.xlsxPath, func(w io.Writer) error { return export.WriteXLSX(w, res, kpis) }); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Workbook exported to %s\n", o.xlsxPath)
	}
	if o.pdfPath != "" {
		data, err := report.BuildPDF(res, kpis)
		if err != nil {
			return fmt.Errorf("building pdf: %w", err)
		}
		if err := os.WriteFile(o.pdfPath, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Report written to %s\n", o.pdfPath)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
