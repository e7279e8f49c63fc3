package surface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/match-odds-chart/internal/chart"
	"github.com/match-odds-chart/internal/metrics"
	"github.com/match-odds-chart/internal/state"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = 4096
)

// Options configure a Session.
type Options struct {
	Series    string
	Viewport  chart.Viewport
	MaxWidth  float64
	MaxHeight float64
}

// Message is the envelope exchanged with the browser.
//
// Client to server: "resize" (width, height) and "select" (series).
// Server to client: "hello", "geometry" and "error".
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Series    string          `json:"series,omitempty"`
	Width     float64         `json:"width,omitempty"`
	Height    float64         `json:"height,omitempty"`
	Geometry  *chart.Geometry `json:"geometry,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Session adapts one websocket connection into a render surface. All writes
// and geometry computations happen on the goroutine running Run.
type Session struct {
	ID string

	conn    *websocket.Conn
	engine  *chart.Engine
	state   *state.Engine
	metrics *metrics.Metrics
	surface *Surface
	opts    Options
	series  string
	pushErr error
}

func NewSession(conn *websocket.Conn, engine *chart.Engine, stateEngine *state.Engine, m *metrics.Metrics, opts Options) *Session {
	return &Session{
		ID:      uuid.NewString(),
		conn:    conn,
		engine:  engine,
		state:   stateEngine,
		metrics: m,
		surface: NewSurface(opts.Viewport),
		opts:    opts,
		series:  opts.Series,
	}
}

// Run serves the connection until the peer goes away or ctx is done. It
// closes the connection on return.
func (s *Session) Run(ctx context.Context) error {
	defer s.conn.Close()

	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()

	events, cancel := s.state.Subscribe(16)
	defer cancel()

	unsubscribe := s.surface.OnResize(func(chart.Viewport) {
		s.metrics.Resized()
		s.pushErr = s.push()
	})
	defer unsubscribe()

	logger := log.With().Str("session", s.ID).Logger()
	logger.Debug().Str("series", s.series).Msg("Surface session started")

	if err := s.write(Message{Type: "hello", SessionID: s.ID, Series: s.series}); err != nil {
		return err
	}
	if s.surface.Viewport() != (chart.Viewport{}) {
		if err := s.push(); err != nil {
			return err
		}
	}

	incoming := make(chan Message)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go s.readLoop(incoming, readErr, done)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeTimeout))
			return ctx.Err()
		case err := <-readErr:
			logger.Debug().Err(err).Msg("Surface session closed")
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case msg := <-incoming:
			if err := s.handle(msg); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Name != s.series {
				continue
			}
			if err := s.push(); err != nil {
				return err
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (s *Session) readLoop(incoming chan<- Message, readErr chan<- error, done <-chan struct{}) {
	s.conn.SetReadLimit(readLimit)
	s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = Message{Type: "invalid", Error: err.Error()}
		}
		select {
		case incoming <- msg:
		case <-done:
			return
		}
	}
}

func (s *Session) handle(msg Message) error {
	switch msg.Type {
	case "resize":
		v := chart.Viewport{Width: msg.Width, Height: msg.Height}
		if err := s.checkViewport(v); err != nil {
			return s.sendError(err.Error())
		}
		s.pushErr = nil
		s.surface.Resize(v)
		return s.pushErr
	case "select":
		if _, ok := s.state.Get(msg.Series); !ok {
			return s.sendError(fmt.Sprintf("%s: %q", state.ErrSeriesNotFound, msg.Series))
		}
		s.series = msg.Series
		return s.push()
	case "invalid":
		return s.sendError("invalid message: " + msg.Error)
	default:
		return s.sendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Session) checkViewport(v chart.Viewport) error {
	if v.Width < 0 || v.Height < 0 {
		return errors.New("width and height must not be negative")
	}
	if s.opts.MaxWidth > 0 && v.Width > s.opts.MaxWidth {
		return fmt.Errorf("width %.0f exceeds %.0f", v.Width, s.opts.MaxWidth)
	}
	if s.opts.MaxHeight > 0 && v.Height > s.opts.MaxHeight {
		return fmt.Errorf("height %.0f exceeds %.0f", v.Height, s.opts.MaxHeight)
	}
	return nil
}

// push recomputes the geometry of the selected series for the current
// viewport. A series that has gone away draws as empty.
func (s *Session) push() error {
	series, ok := s.state.Get(s.series)
	if !ok {
		series = chart.Series{Name: s.series}
	}

	start := time.Now()
	g := s.engine.Compute(series, s.surface.Viewport())
	s.metrics.ObserveGeometry(g.Empty, time.Since(start))

	return s.write(Message{Type: "geometry", SessionID: s.ID, Series: s.series, Geometry: &g})
}

func (s *Session) sendError(text string) error {
	return s.write(Message{Type: "error", SessionID: s.ID, Error: text})
}

func (s *Session) write(msg Message) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(msg)
}
