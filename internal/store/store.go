package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/simulator"
)

// Run is a completed simulation together with its derived indicators.
type Run struct {
	ID          string
	Result      simulator.Result
	KPIs        assessment.KPIs
	CompletedAt time.Time
}

// Store holds the latest run in memory for the lifetime of the process.
// Records are treated as read-only and ordered by timestamp.
type Store struct {
	mu  sync.RWMutex
	run *Run
}

func New() *Store {
	return &Store{}
}

// Set replaces the latest run and assigns it a fresh ID. Out-of-order
// records are sorted first.
func (s *Store) Set(res simulator.Result, kpis assessment.KPIs, completedAt time.Time) Run {
	records := res.Records
	if !sort.SliceIsSorted(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	}) {
		records = append([]model.BalanceRecord(nil), records...)
		sort.Slice(records, func(i, j int) bool {
			return records[i].Timestamp.Before(records[j].Timestamp)
		})
		res.Records = records
	}

	run := Run{ID: uuid.NewString(), Result: res, KPIs: kpis, CompletedAt: completedAt}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = &run
	return run
}

// Latest returns the most recent run, if any.
func (s *Store) Latest() (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.run == nil {
		return Run{}, false
	}
	return *s.run, true
}

// RecordCount returns the number of records in the latest run.
func (s *Store) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.run == nil {
		return 0
	}
	return len(s.run.Result.Records)
}

// TimeRange returns the time range covered by the latest run.
func (s *Store) TimeRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.run == nil {
		return model.TimeRange{}, false
	}
	return model.SpanOf(s.run.Result.Records)
}

// RecordsInRange returns records between start (inclusive) and end (exclusive).
func (s *Store) RecordsInRange(start, end time.Time) []model.BalanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.run == nil {
		return nil
	}
	all := s.run.Result.Records

	startIdx := sort.Search(len(all), func(i int) bool {
		return !all[i].Timestamp.Before(start)
	})
	endIdx := sort.Search(len(all), func(i int) bool {
		return !all[i].Timestamp.Before(end)
	})

	if startIdx >= endIdx {
		return nil
	}

	result := make([]model.BalanceRecord, endIdx-startIdx)
	copy(result, all[startIdx:endIdx])
	return result
}

// RecordAt returns the most recent record at or before the given timestamp.
func (s *Store) RecordAt(t time.Time) (model.BalanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.run == nil {
		return model.BalanceRecord{}, false
	}
	all := s.run.Result.Records

	// Find first record after t
	idx := sort.Search(len(all), func(i int) bool {
		return all[i].Timestamp.After(t)
	})
	if idx == 0 {
		return model.BalanceRecord{}, false
	}
	return all[idx-1], true
}
