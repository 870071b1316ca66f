// Package publish forwards run summaries to a Kafka topic.
package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/store"
)

const writeTimeout = 5 * time.Second

// Summary is the message published for every run. The series itself is
// not included.
type Summary struct {
	RunID       string                `json:"run_id"`
	Seed        uint64                `json:"seed"`
	CompletedAt time.Time             `json:"completed_at"`
	WindowStart time.Time             `json:"window_start"`
	WindowEnd   time.Time             `json:"window_end"`
	Hours       int                   `json:"hours"`
	Compliance  assessment.Compliance `json:"compliance"`
	Carbon      assessment.Carbon     `json:"carbon"`
	KPIs        assessment.KPIs       `json:"kpis"`
}

func SummaryOf(run store.Run) Summary {
	tr, _ := model.SpanOf(run.Result.Records)
	return Summary{
		RunID:       run.ID,
		Seed:        run.Result.Seed,
		CompletedAt: run.CompletedAt,
		WindowStart: tr.Start,
		WindowEnd:   tr.End,
		Hours:       len(run.Result.Records),
		Compliance:  run.Result.Compliance,
		Carbon:      run.Result.Carbon,
		KPIs:        run.KPIs,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes run summaries keyed by run ID.
type Kafka struct {
	w   messageWriter
	log *slog.Logger
}

func NewKafka(brokers []string, topic string, log *slog.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return newKafka(w, log.With(slog.String("component", "kafka-publisher"), slog.String("topic", topic)))
}

func newKafka(w messageWriter, log *slog.Logger) *Kafka {
	return &Kafka{w: w, log: log}
}

// OnRun publishes the run summary. Failures are logged; the run itself is
// already stored and broadcast.
func (k *Kafka) OnRun(run store.Run) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := k.Publish(ctx, run); err != nil {
		k.log.Error("publish_failed", "run_id", run.ID, "err", err)
		return
	}
	k.log.Info("publish_ok", "run_id", run.ID)
}

func (k *Kafka) Publish(ctx context.Context, run store.Run) error {
	b, err := json.Marshal(SummaryOf(run))
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(run.ID),
		Value: b,
		Time:  run.CompletedAt,
	})
}

func (k *Kafka) Close() error {
	return k.w.Close()
}
