package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/match-odds-chart/internal/chart"
	"github.com/match-odds-chart/internal/config"
	"github.com/match-odds-chart/internal/metrics"
	"github.com/match-odds-chart/internal/state"
	"github.com/match-odds-chart/internal/stats"
	"github.com/match-odds-chart/internal/surface"
)

var errBadQuery = errors.New("invalid query")

type Server struct {
	config   config.APIConfig
	chartCfg config.ChartConfig
	dataCfg  config.DataConfig
	engine   *chart.Engine
	state    *state.Engine
	metrics  *metrics.Metrics
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
	started  time.Time
	server   *http.Server
}

func NewServer(cfg *config.Config, stateEngine *state.Engine, m *metrics.Metrics) *Server {
	s := &Server{
		config:   cfg.API,
		chartCfg: cfg.Chart,
		dataCfg:  cfg.Data,
		engine:   chart.NewEngine(cfg.Chart),
		state:    stateEngine,
		metrics:  m,
		started:  time.Now(),
	}
	if cfg.API.RateLimitPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.API.RateLimitPerSecond), cfg.API.RateLimitPerSecond)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the full routing tree with CORS and rate limiting applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.rateLimit)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           3600,
	})

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/series", s.getSeriesList).Methods("GET")
	api.HandleFunc("/series/{name}", s.getSeries).Methods("GET")
	api.HandleFunc("/series/{name}/geometry", s.getGeometry).Methods("GET")
	api.HandleFunc("/series/{name}/chart.{format}", s.getChart).Methods("GET")
	api.HandleFunc("/series/{name}/summary", s.getSummary).Methods("GET")
	api.HandleFunc("/stream/geometry", s.streamGeometry).Methods("GET")
	api.HandleFunc("/stream/series", s.streamSeries).Methods("GET")
	api.HandleFunc("/health", s.getHealth).Methods("GET")
	router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	return c.Handler(router)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.config.BindAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.config.BindAddress).Msg("API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown: %w", err)
	}
	return nil
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.metrics.Limited()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) getSeriesList(w http.ResponseWriter, r *http.Request) {
	infos := s.state.List()

	response := struct {
		Series []state.SeriesInfo `json:"series"`
		Count  int                `json:"count"`
	}{
		Series: infos,
		Count:  len(infos),
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	series, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) getGeometry(w http.ResponseWriter, r *http.Request) {
	series, ok := s.lookup(w, r)
	if !ok {
		return
	}
	viewport, err := s.parseViewport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.compute(series, viewport))
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	format, err := chart.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	series, ok := s.lookup(w, r)
	if !ok {
		return
	}
	viewport, err := s.parseViewport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.writeChart(w, series.Name, s.compute(series, viewport), format) {
		s.metrics.Rendered(string(format))
	}
}

// writeChart buffers the whole image; nothing reaches w if Render fails.
func (s *Server) writeChart(w http.ResponseWriter, name string, g chart.Geometry, format chart.Format) bool {
	var buf bytes.Buffer
	if err := chart.Render(&buf, g, format); err != nil {
		log.Error().Err(err).Str("series", name).Msg("Chart render failed")
		writeError(w, http.StatusInternalServerError, "chart render failed")
		return false
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	return true
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	series, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stats.Summarize(series))
}

// streamGeometry upgrades to the websocket render surface. Optional query
// parameters select the series and the initial viewport.
func (s *Server) streamGeometry(w http.ResponseWriter, r *http.Request) {
	opts := surface.Options{
		Series:    r.URL.Query().Get("series"),
		MaxWidth:  s.config.MaxWidth,
		MaxHeight: s.config.MaxHeight,
	}
	if opts.Series == "" {
		opts.Series = s.dataCfg.DefaultSeries
	}
	if r.URL.Query().Has("width") || r.URL.Query().Has("height") {
		viewport, err := s.parseViewport(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Viewport = viewport
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	session := surface.NewSession(conn, s.engine, s.state, s.metrics, opts)
	if err := session.Run(r.Context()); err != nil && !errors.Is(err, context.Canceled) {
		log.Debug().Err(err).Str("session", session.ID).Msg("Surface session ended")
	}
}

// streamSeries sends series replacement events as server-sent events.
func (s *Server) streamSeries(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, cancel := s.state.Subscribe(64)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, _ := json.Marshal(ev)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Uptime    string    `json:"uptime"`
		Series    int       `json:"series"`
	}{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Series:    len(s.state.List()),
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (chart.Series, bool) {
	series, err := s.state.Lookup(mux.Vars(r)["name"])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, state.ErrSeriesNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return chart.Series{}, false
	}
	return series, true
}

func (s *Server) compute(series chart.Series, viewport chart.Viewport) chart.Geometry {
	start := time.Now()
	g := s.engine.Compute(series, viewport)
	s.metrics.ObserveGeometry(g.Empty, time.Since(start))
	return g
}

func (s *Server) parseViewport(r *http.Request) (chart.Viewport, error) {
	width, err := parseDimension(r, "width", s.chartCfg.DefaultWidth, s.config.MaxWidth)
	if err != nil {
		return chart.Viewport{}, err
	}
	height, err := parseDimension(r, "height", s.chartCfg.DefaultHeight, s.config.MaxHeight)
	if err != nil {
		return chart.Viewport{}, err
	}
	return chart.Viewport{Width: width, Height: height}, nil
}

func parseDimension(r *http.Request, key string, fallback, max float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", errBadQuery, key, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", errBadQuery, key)
	}
	if max > 0 && v > max {
		return 0, fmt.Errorf("%w: %s must be at most %g", errBadQuery, key, max)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
