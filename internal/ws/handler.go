package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"building_twin/internal/assessment"
	"building_twin/internal/model"
	"building_twin/internal/simulator"
	"building_twin/internal/store"
)

// MaxRunHours bounds runs requested by dashboard clients.
const MaxRunHours = 24 * 366

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Observer is notified about every run the handler executes.
type Observer interface {
	ObserveRun(res simulator.Result, kpis assessment.KPIs, elapsed time.Duration)
	ObserveFailure(elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(simulator.Result, assessment.KPIs, time.Duration) {}
func (nopObserver) ObserveFailure(time.Duration)                                {}

// Handler manages WebSocket connections, runs the engine on request and
// serves range queries from the store.
type Handler struct {
	hub      *Hub
	engine   *simulator.Engine
	store    *store.Store
	sinks    []RunSink
	observer Observer
}

// NewHandler wires a handler. obs may be nil.
func NewHandler(hub *Hub, engine *simulator.Engine, st *store.Store, obs Observer) *Handler {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Handler{
		hub:      hub,
		engine:   engine,
		store:    st,
		sinks:    []RunSink{NewBridge(hub)},
		observer: obs,
	}
}

// AddSink registers an additional receiver of completed runs. It must be
// called before the handler serves requests.
func (h *Handler) AddSink(s RunSink) {
	h.sinks = append(h.sinks, s)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	// Send the latest run, if there is one
	h.sendLatest(client)

	h.readPump(client)
}

// Execute runs the engine, stores the run and broadcasts it. Zero hours
// selects the configured default; a nil seed keeps the configured seed.
func (h *Handler) Execute(hours int, seed *uint64) (store.Run, error) {
	if hours == 0 {
		hours = h.engine.Config().Hours
	}
	if hours > MaxRunHours {
		return store.Run{}, fmt.Errorf("run of %d hours exceeds %d: %w", hours, MaxRunHours, model.ErrInvalidArgument)
	}
	engine := h.engine
	if seed != nil {
		engine = engine.WithSeed(*seed)
	}

	started := time.Now()
	res, err := engine.Run(hours)
	if err != nil {
		h.observer.ObserveFailure(time.Since(started))
		return store.Run{}, err
	}
	kpis, err := assessment.ComputeKPIs(res.Records, res.Carbon)
	if err != nil {
		h.observer.ObserveFailure(time.Since(started))
		return store.Run{}, err
	}
	h.observer.ObserveRun(res, kpis, time.Since(started))

	run := h.store.Set(res, kpis, time.Now().UTC())
	for _, s := range h.sinks {
		s.OnRun(run)
	}
	return run, nil
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeRunRequest:
		var p RunRequestPayload
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				h.sendError(c, env.Type, fmt.Errorf("invalid payload: %w", err))
				return
			}
		}
		if _, err := h.Execute(p.Hours, p.Seed); err != nil {
			log.Printf("Run failed: %v", err)
			h.sendError(c, env.Type, err)
		}

	case TypeRecordsRange:
		var p RangeRequestPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, env.Type, fmt.Errorf("invalid payload: %w", err))
			return
		}
		tr, err := parseRange(p)
		if err != nil {
			h.sendError(c, env.Type, err)
			return
		}
		tr, err = h.clampToRun(tr)
		if err != nil {
			h.sendError(c, env.Type, err)
			return
		}
		h.send(c, TypeRecords, RecordsPayload{
			TimeRange: timeRangeInfo(tr),
			Records:   h.store.RecordsInRange(tr.Start, tr.End),
		})

	case TypeRecordAt:
		var p RecordAtPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, env.Type, fmt.Errorf("invalid payload: %w", err))
			return
		}
		at, err := time.Parse(time.RFC3339, p.At)
		if err != nil {
			h.sendError(c, env.Type, fmt.Errorf("invalid at: %w", err))
			return
		}
		rec, ok := h.store.RecordAt(at)
		if !ok {
			h.sendError(c, env.Type, fmt.Errorf("no record at or before %s", p.At))
			return
		}
		h.send(c, TypeRecord, RecordPayload{Record: rec})

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

func parseRange(p RangeRequestPayload) (model.TimeRange, error) {
	start, err := time.Parse(time.RFC3339, p.Start)
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, p.End)
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("invalid end: %w", err)
	}
	return model.TimeRange{Start: start, End: end}, nil
}

// clampToRun narrows a requested [start, end) range to the hours covered by
// the stored run.
func (h *Handler) clampToRun(tr model.TimeRange) (model.TimeRange, error) {
	span, ok := h.store.TimeRange()
	if !ok {
		return model.TimeRange{}, fmt.Errorf("no simulation run yet: %w", model.ErrInsufficientData)
	}
	if tr.Start.Before(span.Start) {
		tr.Start = span.Start
	}
	if last := span.End.Add(model.Step); tr.End.After(last) {
		tr.End = last
	}
	if tr.End.Before(tr.Start) {
		tr.End = tr.Start
	}
	return tr, nil
}

func (h *Handler) sendLatest(c *Client) {
	run, ok := h.store.Latest()
	if !ok {
		return
	}
	h.send(c, TypeRunResult, RunResultFromStore(run))
}

func (h *Handler) sendError(c *Client, request string, err error) {
	h.send(c, TypeError, ErrorPayload{Request: request, Message: err.Error()})
}

func (h *Handler) send(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		log.Printf("Error creating %s message: %v", msgType, err)
		return
	}
	if !h.hub.Send(c, msg) {
		log.Printf("Dropping %s message for closed or slow client", msgType)
	}
}
