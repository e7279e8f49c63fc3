package dataset

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/match-odds-chart/internal/config"
	"github.com/match-odds-chart/internal/logging"
	"github.com/match-odds-chart/internal/metrics"
	"github.com/match-odds-chart/internal/state"
)

// Watcher keeps the state engine in sync with a dataset file.
type Watcher struct {
	path         string
	state        *state.Engine
	metrics      *metrics.Metrics
	pollInterval time.Duration

	mu      sync.Mutex
	modTime time.Time
	size    int64
	loaded  map[string]bool
}

func NewWatcher(cfg config.DataConfig, stateEngine *state.Engine, m *metrics.Metrics) *Watcher {
	return &Watcher{
		path:         cfg.Path,
		state:        stateEngine,
		metrics:      m,
		pollInterval: time.Duration(cfg.ReloadIntervalSecs) * time.Second,
		loaded:       make(map[string]bool),
	}
}

// Run loads the file immediately, then polls it until ctx is done. A zero
// poll interval loads once and returns.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.Reload(); err != nil {
		return err
	}
	if w.pollInterval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// A broken edit keeps the previous series in place
			if _, err := w.Reload(); err != nil {
				log.Warn().Err(err).Str("path", w.path).Msg("Dataset reload failed")
			}
		}
	}
}

// Reload reads the file if it changed since the last successful load and
// replaces its series in the state engine. Series that disappeared from the
// file are deleted.
func (w *Watcher) Reload() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.path)
	if err != nil {
		w.metrics.Reloaded("error")
		return false, fmt.Errorf("failed to stat dataset: %w", err)
	}
	if info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		w.metrics.Reloaded("unchanged")
		return false, nil
	}

	series, err := Load(w.path)
	if err != nil {
		w.metrics.Reloaded("error")
		return false, err
	}

	validate := logging.Enabled(zerolog.WarnLevel)
	current := make(map[string]bool, len(series))
	for _, s := range series {
		if validate {
			for _, warning := range Validate(s) {
				log.Warn().Str("series", warning.Series).Str("date", warning.Date).Msg(warning.Message)
			}
		}
		w.state.Put(s)
		current[s.Name] = true
	}
	for name := range w.loaded {
		if !current[name] {
			w.state.Delete(name)
		}
	}

	w.loaded = current
	w.modTime = info.ModTime()
	w.size = info.Size()
	w.metrics.Reloaded("ok")
	log.Info().Str("path", w.path).Int("series", len(series)).Msg("Dataset loaded")
	return true, nil
}
