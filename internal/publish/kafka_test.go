package publish

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/simulator"
	"building_twin/internal/store"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var start = time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

func testRun() store.Run {
	records := make([]model.BalanceRecord, 3)
	for i := range records {
		records[i] = model.NewBalanceRecord(model.Observation{Timestamp: start.Add(time.Duration(i) * time.Hour)}, 10, 0, 3, 0)
	}
	return store.Run{
		ID:     "run-1",
		Result: simulator.Result{
			Seed:       4,
			Records:    records,
			Compliance: assessment.Compliance{EPI: 190, RegulatoryLimit: 200, Compliant: true},
		},
		CompletedAt: start.Add(3 * time.Hour),
	}
}

func TestKafka_Publish(t *testing.T) {
	w := &fakeWriter{}
	k := newKafka(w, slog.New(slog.DiscardHandler))

	require.NoError(t, k.Publish(context.Background(), testRun()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "run-1", string(msg.Key))
	assert.Equal(t, start.Add(3*time.Hour), msg.Time)

	var s Summary
	require.NoError(t, json.Unmarshal(msg.Value, &s))
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, uint64(4), s.Seed)
	assert.Equal(t, 3, s.Hours)
	assert.True(t, s.WindowStart.Equal(start))
	assert.True(t, s.WindowEnd.Equal(start.Add(2*time.Hour)))
	assert.True(t, s.Compliance.Compliant)
}

func TestKafka_OnRunLogsFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	k := newKafka(w, slog.New(slog.DiscardHandler))

	k.OnRun(testRun())
	assert.Empty(t, w.msgs)

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}
