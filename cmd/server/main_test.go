package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"building_twin/internal/metrics"
	"building_twin/internal/simulator"
	"building_twin/internal/store"
	"building_twin/internal/ws"
)

func testServer(t *testing.T) (*httptest.Server, *ws.Handler) {
	t.Helper()
	cfg := simulator.DefaultConfig()
	cfg.Hours = 24
	engine, err := simulator.New(cfg, simulator.WithClock(simulator.FixedClock(time.Date(2024, 6, 14, 18, 0, 0, 0, time.UTC))))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	dataStore := store.New()
	handler := ws.NewHandler(ws.NewHub(), engine, dataStore, metrics.New(reg))

	srv := httptest.NewServer(routes(handler, dataStore, reg))
	t.Cleanup(srv.Close)
	return srv, handler
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	resp, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestAPI_NoRunYet(t *testing.T) {
	srv, _ := testServer(t)

	for _, path := range []string{"/api/run", "/api/record?t=2024-06-14T12:00:00Z", "/api/export.csv", "/api/export.xlsx", "/api/report.pdf"} {
		resp, _ := get(t, srv.URL+path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestAPI_AfterRun(t *testing.T) {
	srv, handler := testServer(t)
	_, err := handler.Execute(0, nil)
	require.NoError(t, err)

	resp, body := get(t, srv.URL+"/api/run")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p ws.RunResultPayload
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Len(t, p.Series, 24)

	resp, body = get(t, srv.URL+"/api/export.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 25)

	resp, body = get(t, srv.URL+"/api/export.xlsx")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(body, []byte("PK")))

	resp, body = get(t, srv.URL+"/api/report.pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func TestAPI_Record(t *testing.T) {
	srv, handler := testServer(t)
	_, err := handler.Execute(0, nil)
	require.NoError(t, err)

	resp, body := get(t, srv.URL+"/api/record?t=2024-06-14T12:30:00Z")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, "2024-06-14T12:00:00Z", rec["timestamp"])
	assert.Contains(t, rec, "hvac_consumption")

	resp, _ = get(t, srv.URL+"/api/record?t=noon")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/api/record?t=2024-06-01T00:00:00Z")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, handler := testServer(t)
	_, err := handler.Execute(0, nil)
	require.NoError(t, err)

	resp, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `twin_runs_total{result="ok"} 1`)
	assert.Contains(t, string(body), "twin_epi_kwh_per_m2_year")
}
