package surface

import (
	"math"
	"sort"
	"sync"

	"github.com/match-odds-chart/internal/chart"
)

// Surface tracks the measured size of one render target and tells listeners
// when it changes.
type Surface struct {
	mu        sync.Mutex
	viewport  chart.Viewport
	listeners map[int]func(chart.Viewport)
	nextID    int
}

func NewSurface(initial chart.Viewport) *Surface {
	s := &Surface{listeners: make(map[int]func(chart.Viewport))}
	if valid(initial) {
		s.viewport = initial
	}
	return s
}

// Viewport returns the current size. A surface that was never measured is 0x0.
func (s *Surface) Viewport() chart.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// OnResize registers fn for every later viewport change. The returned func
// unregisters it.
func (s *Surface) OnResize(fn func(chart.Viewport)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Resize records a new measurement and notifies listeners synchronously, in
// registration order. Negative or non-finite sizes and repeats of the current
// size are ignored; it reports whether listeners ran.
func (s *Surface) Resize(v chart.Viewport) bool {
	if !valid(v) {
		return false
	}

	s.mu.Lock()
	if v == s.viewport {
		s.mu.Unlock()
		return false
	}
	s.viewport = v
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(chart.Viewport), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
	return true
}

func valid(v chart.Viewport) bool {
	return finite(v.Width) && finite(v.Height) && v.Width >= 0 && v.Height >= 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
