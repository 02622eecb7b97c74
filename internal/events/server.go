package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/martinsuchenak/devcalc/internal/log"
	"github.com/martinsuchenak/devcalc/internal/model"
	"github.com/martinsuchenak/devcalc/internal/netcalc"
	"github.com/martinsuchenak/devcalc/internal/worker"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// outbound frames buffered per connection
	sendBuffer = 32
)

// Options configures the event server
type Options struct {
	ReadLimit   int64                    // max inbound frame size, 0 for unlimited
	CheckOrigin func(origin string) bool // nil allows any origin
}

// Server upgrades HTTP requests to websocket connections and answers
// calculation events on them
type Server struct {
	calc      *netcalc.Calculator
	pool      *worker.WorkerPool
	upgrader  websocket.Upgrader
	readLimit int64

	mu     sync.Mutex
	conns  map[*conn]struct{}
	closed bool
}

// NewServer creates an event server. Calculations run on pool, which the
// caller starts and stops.
func NewServer(calc *netcalc.Calculator, pool *worker.WorkerPool, opts Options) *Server {
	s := &Server{
		calc:      calc,
		pool:      pool,
		readLimit: opts.ReadLimit,
		conns:     make(map[*conn]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if opts.CheckOrigin == nil {
				return true
			}
			return opts.CheckOrigin(r.Header.Get("Origin"))
		},
	}
	return s
}

// ServeHTTP handles the websocket upgrade
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		log.Warn("Websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	c := newConn(s, ws)
	if !s.track(c) {
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		ws.Close()
		return
	}

	log.Info("Client connected", "conn_id", c.id, "remote_addr", r.RemoteAddr)

	go c.writePump()
	c.readPump()

	s.untrack(c)
	log.Info("Client disconnected", "conn_id", c.id, "remote_addr", r.RemoteAddr)
}

// Close disconnects every client and rejects new ones
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.close()
	}
}

// ConnectionCount returns the number of connected clients
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) track(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// dispatch queues req on the worker pool; the reply is delivered to c
func (s *Server) dispatch(ctx context.Context, c *conn, req Message) {
	job := worker.Job{
		ID: c.id + "/" + req.Event,
		Handler: func(context.Context) error {
			frame, err := replyTo(req, s.handle(req))
			if err != nil {
				return fmt.Errorf("encoding %s reply: %w", req.Event, err)
			}
			c.enqueue(frame)
			return nil
		},
	}

	if err := s.pool.Submit(ctx, job); err != nil {
		log.Warn("Dropping event", "conn_id", c.id, "event", req.Event, "error", err)
		if frame, encErr := replyTo(req, errorEnvelope("server busy")); encErr == nil {
			c.enqueue(frame)
		}
	}
}

// handle computes the reply payload for a request
func (s *Server) handle(req Message) Envelope {
	switch req.Event {
	case EventCalculateDevice:
		var deviceReq model.DeviceRequest
		if err := decodeData(req.Data, &deviceReq); err != nil {
			return errorEnvelope("Calculation error: invalid request: " + err.Error())
		}

		outcome, err := s.calc.Evaluate(deviceReq)
		if err != nil {
			log.Debug("Device calculation failed", "event_id", req.ID, "kind", netcalc.KindOf(err), "error", err)
		} else {
			log.Debug("Device calculated", "event_id", req.ID, "name", outcome.Data.Name, "ip", outcome.Data.IP)
		}
		return outcomeEnvelope(outcome)

	case EventGenerateMAC:
		return successEnvelope(map[string]string{"mac": netcalc.GenerateMAC(s.calc.Source())})

	case EventSampleNetwork:
		var body struct {
			Network string `json:"network"`
		}
		if err := decodeData(req.Data, &body); err != nil {
			return errorEnvelope("invalid request: " + err.Error())
		}
		sample, err := netcalc.SampleNetwork(s.calc.Source(), body.Network)
		if err != nil {
			return errorEnvelope(err.Error())
		}
		return successEnvelope(sample.ToModel())

	default:
		return errorEnvelope(fmt.Sprintf("unknown event %q", req.Event))
	}
}

// decodeData unmarshals an event payload; an absent payload decodes to
// the zero value
func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}
