package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/simulator"
)

var (
	startTime = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	hour      = time.Hour
)

func makeResult(totals []float64) simulator.Result {
	records := make([]model.BalanceRecord, len(totals))
	for i, v := range totals {
		obs := model.Observation{Timestamp: startTime.Add(time.Duration(i) * hour)}
		records[i] = model.NewBalanceRecord(obs, v, 0, 0, 0)
	}
	return simulator.Result{Seed: 1, Records: records}
}

func TestStore_Empty(t *testing.T) {
	s := New()

	_, ok := s.Latest()
	assert.False(t, ok)
	_, ok = s.TimeRange()
	assert.False(t, ok)
	assert.Equal(t, 0, s.RecordCount())
	assert.Empty(t, s.RecordsInRange(startTime, startTime.Add(hour)))
	_, ok = s.RecordAt(startTime)
	assert.False(t, ok)
}

func TestStore_SetAndLatest(t *testing.T) {
	s := New()
	done := startTime.Add(5 * hour)
	kpis := assessment.KPIs{PeakDemandKW: 500}

	first := s.Set(makeResult([]float64{100, 200, 300}), kpis, done)

	run, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, first.ID, run.ID)
	assert.Len(t, run.ID, 36)
	assert.Equal(t, done, run.CompletedAt)
	assert.Equal(t, 500.0, run.KPIs.PeakDemandKW)
	assert.Equal(t, 3, s.RecordCount())

	second := s.Set(makeResult([]float64{1}), kpis, done)
	assert.Equal(t, 1, s.RecordCount())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStore_TimeRange(t *testing.T) {
	s := New()
	s.Set(makeResult([]float64{100, 200, 300}), assessment.KPIs{}, startTime)

	tr, ok := s.TimeRange()
	require.True(t, ok)
	assert.Equal(t, startTime, tr.Start)
	assert.Equal(t, startTime.Add(2*hour), tr.End)
}

func TestStore_RecordsInRange(t *testing.T) {
	s := New()
	s.Set(makeResult([]float64{100, 200, 300, 400, 500}), assessment.KPIs{}, startTime)

	// Hour 1 to hour 3 (exclusive)
	result := s.RecordsInRange(startTime.Add(hour), startTime.Add(3*hour))
	require.Len(t, result, 2)
	assert.InDelta(t, 200.0, result[0].TotalConsumptionKW, 0.001)
	assert.InDelta(t, 300.0, result[1].TotalConsumptionKW, 0.001)

	assert.Empty(t, s.RecordsInRange(startTime.Add(10*hour), startTime.Add(11*hour)))
	assert.Empty(t, s.RecordsInRange(startTime.Add(3*hour), startTime.Add(hour)))
}

func TestStore_RecordAt(t *testing.T) {
	s := New()
	s.Set(makeResult([]float64{100, 200, 300}), assessment.KPIs{}, startTime)

	r, ok := s.RecordAt(startTime)
	require.True(t, ok)
	assert.InDelta(t, 100.0, r.TotalConsumptionKW, 0.001)

	r, ok = s.RecordAt(startTime.Add(90 * time.Minute))
	require.True(t, ok)
	assert.InDelta(t, 200.0, r.TotalConsumptionKW, 0.001)

	r, ok = s.RecordAt(startTime.Add(100 * hour))
	require.True(t, ok)
	assert.InDelta(t, 300.0, r.TotalConsumptionKW, 0.001)

	_, ok = s.RecordAt(startTime.Add(-time.Minute))
	assert.False(t, ok)
}

func TestStore_SetSortsRecords(t *testing.T) {
	res := makeResult([]float64{100, 200, 300})
	res.Records[0], res.Records[2] = res.Records[2], res.Records[0]

	s := New()
	run := s.Set(res, assessment.KPIs{}, startTime)

	assert.Equal(t, startTime, run.Result.Records[0].Timestamp)
	assert.InDelta(t, 100.0, run.Result.Records[0].TotalConsumptionKW, 0.001)
	// caller's slice is left alone
	assert.InDelta(t, 300.0, res.Records[0].TotalConsumptionKW, 0.001)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set(makeResult([]float64{1, 2, 3}), assessment.KPIs{}, startTime)
		}()
		go func() {
			defer wg.Done()
			s.RecordsInRange(startTime, startTime.Add(2*hour))
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, s.RecordCount())
}
