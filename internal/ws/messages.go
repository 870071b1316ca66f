package ws

import (
	"encoding/json"
	"time"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/solar"
	"building_twin/internal/store"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages

// RunRequestPayload asks for a fresh run. Zero hours means the configured
// default; a nil seed keeps the configured seed.
type RunRequestPayload struct {
	Hours int     `json:"hours"`
	Seed  *uint64 `json:"seed,omitempty"`
}

type RangeRequestPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RecordAtPayload asks for the latest record at or before At (RFC3339).
type RecordAtPayload struct {
	At string `json:"at"`
}

// Server -> Client messages

type ColumnInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type RunResultPayload struct {
	RunID       string                `json:"run_id"`
	Seed        uint64                `json:"seed"`
	CompletedAt string                `json:"completed_at"`
	TimeRange   TimeRangeInfo         `json:"time_range"`
	Columns     []ColumnInfo          `json:"columns"`
	Compliance  assessment.Compliance `json:"compliance"`
	Carbon      assessment.Carbon     `json:"carbon"`
	KPIs        assessment.KPIs       `json:"kpis"`
	Profile     solar.Profile         `json:"solar_profile"`
	Series      []model.BalanceRecord `json:"series"`
}

type RecordsPayload struct {
	TimeRange TimeRangeInfo         `json:"time_range"`
	Records   []model.BalanceRecord `json:"records"`
}

type RecordPayload struct {
	Record model.BalanceRecord `json:"record"`
}

type ErrorPayload struct {
	Request string `json:"request"`
	Message string `json:"message"`
}

// Message type constants
const (
	// Client -> Server
	TypeRunRequest   = "run:request"
	TypeRecordsRange = "records:range"
	TypeRecordAt     = "record:at"

	// Server -> Client
	TypeRunResult = "run:result"
	TypeRecords   = "records:data"
	TypeRecord    = "record:data"
	TypeError     = "error"
)

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func columnInfos() []ColumnInfo {
	cols := make([]ColumnInfo, len(model.Columns))
	for i, c := range model.Columns {
		info := model.ColumnCatalog[c]
		cols[i] = ColumnInfo{ID: string(c), Name: info.Name, Unit: info.Unit}
	}
	return cols
}

func timeRangeInfo(tr model.TimeRange) TimeRangeInfo {
	return TimeRangeInfo{
		Start: tr.Start.Format(time.RFC3339),
		End:   tr.End.Format(time.RFC3339),
	}
}

// RunResultFromStore converts a stored run to its dashboard payload.
func RunResultFromStore(run store.Run) RunResultPayload {
	tr, _ := model.SpanOf(run.Result.Records)
	return RunResultPayload{
		RunID:       run.ID,
		Seed:        run.Result.Seed,
		CompletedAt: run.CompletedAt.Format(time.RFC3339),
		TimeRange:   timeRangeInfo(tr),
		Columns:     columnInfos(),
		Compliance:  run.Result.Compliance,
		Carbon:      run.Result.Carbon,
		KPIs:        run.KPIs,
		Profile:     solar.BuildProfile(run.Result.Records),
		Series:      run.Result.Records,
	}
}
