package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/martinsuchenak/devcalc/internal/log"
)

// conn is one connected client. Only writePump writes data frames.
type conn struct {
	id     string
	server *Server
	ws     *websocket.Conn
	send   chan []byte

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newConn(s *Server, ws *websocket.Conn) *conn {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &conn{
		id:     id.String(),
		server: s,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// close tears the connection down; safe to call more than once
func (c *conn) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

// enqueue hands a frame to the writer, giving up once the connection closes
func (c *conn) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	case <-c.ctx.Done():
	}
}

func (c *conn) readPump() {
	defer c.close()

	if c.server.readLimit > 0 {
		c.ws.SetReadLimit(c.server.readLimit)
	}
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn("Websocket read failed", "conn_id", c.id, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req Message
		if err := json.Unmarshal(data, &req); err != nil || req.Event == "" {
			log.Debug("Malformed event frame", "conn_id", c.id)
			if frame, encErr := replyTo(Message{Event: EventError, ID: req.ID}, errorEnvelope("malformed event frame")); encErr == nil {
				c.enqueue(frame)
			}
			continue
		}

		log.Trace("Event received", "conn_id", c.id, "event", req.Event, "event_id", req.ID)
		c.server.dispatch(c.ctx, c, req)
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug("Websocket write failed", "conn_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
