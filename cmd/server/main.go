package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"building_twin/internal/config"
	"building_twin/internal/export"
	"building_twin/internal/metrics"
	"building_twin/internal/publish"
	"building_twin/internal/report"
	"building_twin/internal/simulator"
	"building_twin/internal/store"
	"building_twin/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "YAML building description (default $TWIN_CONFIG)")
	frontendDir := flag.String("frontend-dir", "frontend/build", "directory containing frontend build")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	engine, err := simulator.New(cfg, simulator.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to initialize simulation engine: %v", err)
	}

	hub := ws.NewHub()
	dataStore := store.New()
	recorder := metrics.New(prometheus.DefaultRegisterer)
	handler := ws.NewHandler(hub, engine, dataStore, recorder)

	if serverCfg := config.LoadServer(); serverCfg.PublishEnabled() {
		publisher := publish.NewKafka(serverCfg.KafkaBrokers, serverCfg.KafkaTopic, logger)
		defer publisher.Close()
		handler.AddSink(publisher)
		log.Printf("Publishing run summaries to %s on %v", serverCfg.KafkaTopic, serverCfg.KafkaBrokers)
	}

	run, err := handler.Execute(0, nil)
	if err != nil {
		log.Fatalf("Initial simulation failed: %v", err)
	}
	log.Printf("Simulated %d hours (seed %d), EPI %.1f kWh/m²/year",
		len(run.Result.Records), run.Result.Seed, run.Result.Compliance.EPI)

	mux := routes(handler, dataStore, prometheus.DefaultGatherer)

	// Serve frontend static files
	if _, err := os.Stat(*frontendDir); err == nil {
		log.Printf("Serving frontend from %s", *frontendDir)
		mux.Handle("/", http.FileServer(http.Dir(*frontendDir)))
	}

	srv := &http.Server{Addr: *addr, Handler: handlers.LoggingHandler(os.Stdout, mux)}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func routes(handler *ws.Handler, dataStore *store.Store, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/ws", handler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/run", func(w http.ResponseWriter, r *http.Request) {
		run, ok := latest(w, dataStore)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ws.RunResultFromStore(run)); err != nil {
			log.Printf("Encoding run: %v", err)
		}
	})
	mux.HandleFunc("GET /api/record", func(w http.ResponseWriter, r *http.Request) {
		at, err := time.Parse(time.RFC3339, r.URL.Query().Get("t"))
		if err != nil {
			http.Error(w, "t must be an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		rec, ok := dataStore.RecordAt(at)
		if !ok {
			http.Error(w, "no record at or before "+at.Format(time.RFC3339), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rec); err != nil {
			log.Printf("Encoding record: %v", err)
		}
	})
	mux.HandleFunc("GET /api/export.csv", func(w http.ResponseWriter, r *http.Request) {
		run, ok := latest(w, dataStore)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="building_twin.csv"`)
		if err := export.WriteCSV(w, run.Result.Records); err != nil {
			log.Printf("Writing csv: %v", err)
		}
	})
	mux.HandleFunc("GET /api/export.xlsx", func(w http.ResponseWriter, r *http.Request) {
		run, ok := latest(w, dataStore)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="building_twin.xlsx"`)
		if err := export.WriteXLSX(w, run.Result, run.KPIs); err != nil {
			log.Printf("Writing xlsx: %v", err)
		}
	})
	mux.HandleFunc("GET /api/report.pdf", func(w http.ResponseWriter, r *http.Request) {
		run, ok := latest(w, dataStore)
		if !ok {
			return
		}
		data, err := report.BuildPDF(run.Result, run.KPIs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(data)
	})
	return mux
}

func latest(w http.ResponseWriter, dataStore *store.Store) (store.Run, bool) {
	run, ok := dataStore.Latest()
	if !ok {
		http.Error(w, "no simulation run yet", http.StatusNotFound)
	}
	return run, ok
}
