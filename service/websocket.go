package service

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // a pasted source file can be much larger than a control message
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// liveSession is one connected editor. Unlike the REST /api/v1/assemble
// endpoint, which assembles once per request, a liveSession drives the
// pipeline repeatedly as the client retypes its source and sends each
// run's per-line diagnostics back over the same connection once the run
// has finished, through the broadcaster subscription it holds for its own
// session ID.
// A session also doubles as an observer: sending "watch" instead of
// "assemble" subscribes it to another session's events (e.g. a read-only
// dashboard tailing a teaching session) without driving the pipeline
// itself.
type liveSession struct {
	id           string
	conn         *websocket.Conn
	server       *Server
	send         chan BroadcastEvent
	subscription *Subscription
	mu           sync.Mutex
}

// clientMessage is a message sent by the editor over the socket. "assemble"
// carries the live source and drives the pipeline; "watch" subscribes to
// another session's events without submitting source of its own.
type clientMessage struct {
	Type       string            `json:"type"` // "assemble" or "watch"
	SessionID  string            `json:"sessionId"`
	Source     []string          `json:"source,omitempty"`
	SymbolMap  map[string]uint64 `json:"symbolMap,omitempty"`
	SourceHash string            `json:"sourceHash,omitempty"`
	EventTypes []string          `json:"events,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	session := &liveSession{
		conn:   conn,
		server: s,
		send:   make(chan BroadcastEvent, 256),
	}

	go session.writePump()
	go session.readPump()
}

func (c *liveSession) readPump() {
	defer func() {
		c.cleanup()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "assemble":
			c.runAssemble(msg)
		case "watch":
			c.watch(msg)
		}
	}
}

func (c *liveSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// runAssemble drives the pipeline for one "assemble" message: it runs the
// same Assembler the REST endpoint uses and, once it returns, broadcasts
// one EventLine per diagnostic and a closing EventDone under the message's
// session ID. Before its first run the connection subscribes to that
// session ID, so it receives these events just as any "watch"ing session
// does.
func (c *liveSession) runAssemble(msg clientMessage) {
	c.mu.Lock()
	c.id = msg.SessionID
	c.mu.Unlock()

	if c.subscription == nil {
		c.watch(clientMessage{SessionID: msg.SessionID})
	}

	_, errList := c.server.asm.Assemble(msg.Source, msg.SymbolMap, msg.SourceHash)

	for _, e := range errList {
		c.server.broadcaster.BroadcastLine(msg.SessionID, e.Pos.Line, e.Message)
	}
	c.server.broadcaster.BroadcastDone(msg.SessionID, len(errList))
}

// watch subscribes this connection to another session's events without
// submitting source of its own, for a client observing someone else's
// live assemble (e.g. a paired-editing viewer).
func (c *liveSession) watch(msg clientMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscription != nil {
		c.server.broadcaster.Unsubscribe(c.subscription)
	}

	eventTypes := make([]EventType, 0, len(msg.EventTypes))
	for _, et := range msg.EventTypes {
		eventTypes = append(eventTypes, EventType(et))
	}

	c.subscription = c.server.broadcaster.Subscribe(msg.SessionID, eventTypes)
	go c.forwardEvents(c.subscription)
}

func (c *liveSession) forwardEvents(sub *Subscription) {
	for event := range sub.Channel {
		select {
		case c.send <- event:
		default:
		}
	}
}

func (c *liveSession) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscription != nil {
		c.server.broadcaster.Unsubscribe(c.subscription)
		c.subscription = nil
	}
}
