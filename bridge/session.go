package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gamescale/platform"
	"gamescale/scaler"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueue      = 16
)

// inMessage is a client message. Geometry fields are inline.
type inMessage struct {
	Type string `json:"type"`
	platform.Report
	Config *configMessage `json:"config,omitempty"`
}

// configMessage is a partial config; debounce is in milliseconds.
type configMessage struct {
	LogicalSize         *scaler.Size `json:"logicalSize,omitempty"`
	MinScale            *float64     `json:"minScale,omitempty"`
	MaxScale            *float64     `json:"maxScale,omitempty"`
	MaintainAspectRatio *bool        `json:"maintainAspectRatio,omitempty"`
	Padding             *float64     `json:"padding,omitempty"`
	EnableSafeArea      *bool        `json:"enableSafeArea,omitempty"`
	DebounceMs          *float64     `json:"debounceMs,omitempty"`
}

func (m configMessage) patch() scaler.ConfigPatch {
	p := scaler.ConfigPatch{
		LogicalSize:         m.LogicalSize,
		MinScale:            m.MinScale,
		MaxScale:            m.MaxScale,
		MaintainAspectRatio: m.MaintainAspectRatio,
		Padding:             m.Padding,
		EnableSafeArea:      m.EnableSafeArea,
	}
	if m.DebounceMs != nil {
		p.Debounce = scaler.Ptr(time.Duration(*m.DebounceMs * float64(time.Millisecond)))
	}
	return p
}

type outMessage struct {
	Type    string        `json:"type"`
	Session string        `json:"session,omitempty"`
	State   *scaler.State `json:"state,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// session binds one WebSocket to a Remote host and its scaler.
type session struct {
	id      string
	srv     *Server
	conn    *websocket.Conn
	host    *platform.Remote
	sc      *scaler.Scaler
	limiter *rate.Limiter
	started time.Time

	send      chan outMessage
	done      chan struct{}
	closeOnce sync.Once
}

// handleWS upgrades the request. Initial geometry may be passed with the
// same query parameters as /api/layout.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cfg, err := configFromQuery(q, s.opts.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep, err := reportFromQuery(q, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	host := platform.NewRemote()
	if rep.Window.Width > 0 && rep.Window.Height > 0 {
		if err := host.Apply(rep); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	sc, err := scaler.New(host, cfg, scaler.WithClock(s.opts.Clock), scaler.WithLogger(s.opts.DebugLog))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("bridge: upgrade: %v", err)
		return
	}

	sess := &session{
		id:      uuid.NewString(),
		srv:     s,
		conn:    conn,
		host:    host,
		sc:      sc,
		limiter: rate.NewLimiter(s.opts.MessageRate, s.opts.MessageBurst),
		started: time.Now(),
		send:    make(chan outMessage, sendQueue),
		done:    make(chan struct{}),
	}
	s.track(sess)
	s.debugf("bridge: session %s opened from %s", sess.id, r.RemoteAddr)

	go sess.writeLoop()
	unsub := sc.Subscribe(sess.pushState)
	sess.readLoop()

	unsub()
	sc.Destroy()
	sess.close()
	s.untrack(sess)
	s.debugf("bridge: session %s closed after %d reports", sess.id, host.Reports())
}

func (c *session) pushState(st scaler.State) {
	c.push(outMessage{Type: "state", Session: c.id, State: &st})
}

// push queues m without blocking. A full queue drops the message; a later
// state supersedes it anyway.
func (c *session) push(m outMessage) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- m:
	default:
		c.srv.logf("bridge: session %s send queue full, dropping %s", c.id, m.Type)
	}
}

func (c *session) pushError(err error) {
	c.push(outMessage{Type: "error", Session: c.id, Error: err.Error()})
}

func (c *session) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *session) readLoop() {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.srv.logf("bridge: session %s read: %v", c.id, err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if !c.limiter.Allow() {
			c.srv.debugf("bridge: session %s rate limited, dropping message", c.id)
			continue
		}
		c.handle(data)
	}
}

func (c *session) handle(data []byte) {
	var in inMessage
	if err := json.Unmarshal(data, &in); err != nil {
		c.pushError(fmt.Errorf("bad message: %v", err))
		return
	}
	switch in.Type {
	case "geometry":
		if err := c.host.Apply(in.Report); err != nil {
			c.pushError(err)
		}
	case "config":
		if in.Config == nil {
			c.pushError(fmt.Errorf("config message without config"))
			return
		}
		if err := c.sc.UpdateConfig(in.Config.patch()); err != nil {
			c.pushError(err)
		}
	default:
		c.pushError(fmt.Errorf("unknown message type %q", in.Type))
	}
}

func (c *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case m := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(m); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}
