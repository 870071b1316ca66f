package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/simulator"
	"building_twin/internal/store"
)

var startTime = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

func newTestBridge() (*Bridge, *Client) {
	hub := NewHub()
	client := &Client{hub: hub, send: make(chan []byte, 256)}
	hub.Register(client)
	return NewBridge(hub), client
}

func receiveEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	msg := <-c.send
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func sampleRun() store.Run {
	records := []model.BalanceRecord{
		model.NewBalanceRecord(model.Observation{Timestamp: startTime, Occupancy: 3}, 5, 1, 3, 2),
		model.NewBalanceRecord(model.Observation{Timestamp: startTime.Add(time.Hour)}, 1, 0, 3, 9),
	}
	return store.Run{
		ID:     "5f0c6a52-2b1e-4a55-9a8e-2d8c1b0f6e11",
		Result: simulator.Result{
			Seed:       9,
			Records:    records,
			Compliance: assessment.Compliance{EPI: 150, RegulatoryLimit: 200, Compliant: true},
			Carbon:     assessment.Carbon{GrossEmissionsKg: 5.74},
		},
		KPIs:        assessment.KPIs{PeakDemandKW: 9},
		CompletedAt: startTime.Add(2 * time.Hour),
	}
}

func TestBridge_OnRun(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.OnRun(sampleRun())

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeRunResult, env.Type)

	var p RunResultPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "5f0c6a52-2b1e-4a55-9a8e-2d8c1b0f6e11", p.RunID)
	assert.Equal(t, uint64(9), p.Seed)
	assert.Equal(t, "2024-06-14T14:00:00Z", p.CompletedAt)
	assert.Equal(t, "2024-06-14T12:00:00Z", p.TimeRange.Start)
	assert.Equal(t, "2024-06-14T13:00:00Z", p.TimeRange.End)
	assert.True(t, p.Compliance.Compliant)
	assert.Equal(t, 9.0, p.KPIs.PeakDemandKW)
	require.Len(t, p.Series, 2)
	assert.Equal(t, 3, p.Series[0].Occupancy)
	assert.InDelta(t, 7.0, p.Series[0].GridImportKW, 1e-9)
	assert.InDelta(t, 5.0, p.Series[1].GridExportKW, 1e-9)
	assert.Equal(t, 13, p.Profile.PeakHour)
	assert.InDelta(t, 9.0, p.Profile.HourlyKW[13], 1e-9)
	require.Len(t, p.Columns, len(model.Columns))
	assert.Equal(t, "timestamp", p.Columns[0].ID)
}

func TestRunResult_WireFieldNames(t *testing.T) {
	data, err := json.Marshal(RunResultFromStore(sampleRun()))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	var compliance map[string]any
	require.NoError(t, json.Unmarshal(raw["compliance"], &compliance))
	for _, k := range []string{"annual_consumption", "energy_performance_index", "regulatory_limit", "is_compliant", "required_savings"} {
		assert.Contains(t, compliance, k)
	}

	var carbon map[string]any
	require.NoError(t, json.Unmarshal(raw["carbon"], &carbon))
	for _, k := range []string{"gross_emissions", "carbon_offset", "net_emissions", "annualized_net_emissions"} {
		assert.Contains(t, carbon, k)
	}

	var series []map[string]any
	require.NoError(t, json.Unmarshal(raw["series"], &series))
	for _, k := range []string{"timestamp", "temperature", "humidity", "ambient_light", "occupancy", "hvac_consumption", "lighting_consumption", "base_load", "solar_generation", "total_consumption", "net_energy", "grid_import", "grid_export"} {
		assert.Contains(t, series[0], k)
	}
}
