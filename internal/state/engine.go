package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/match-odds-chart/internal/chart"
)

var ErrSeriesNotFound = errors.New("series not found")

// SeriesEvent is published whenever a series is replaced or removed.
type SeriesEvent struct {
	Name      string    `json:"name"`
	Removed   bool      `json:"removed"`
	Timestamp time.Time `json:"timestamp"`
}

// SeriesInfo is the listing entry for a stored series.
type SeriesInfo struct {
	Name      string     `json:"name"`
	Title     string     `json:"title,omitempty"`
	Count     int        `json:"count"`
	FirstDate *time.Time `json:"first_date,omitempty"`
	LastDate  *time.Time `json:"last_date,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type entry struct {
	series    chart.Series
	updatedAt time.Time
}

// Engine stores series by name. Series are only ever replaced wholesale and
// every read returns a clone.
type Engine struct {
	mu          sync.RWMutex
	series      map[string]entry
	subscribers map[int]chan SeriesEvent
	nextSubID   int
}

func NewEngine() *Engine {
	return &Engine{
		series:      make(map[string]entry),
		subscribers: make(map[int]chan SeriesEvent),
	}
}

// Put stores a copy of the series, replacing any series with the same name,
// and notifies subscribers.
func (e *Engine) Put(series chart.Series) {
	now := time.Now()
	e.mu.Lock()
	e.series[series.Name] = entry{series: series.Clone(), updatedAt: now}
	e.mu.Unlock()

	e.publish(SeriesEvent{Name: series.Name, Timestamp: now})
}

func (e *Engine) Delete(name string) bool {
	e.mu.Lock()
	_, exists := e.series[name]
	delete(e.series, name)
	e.mu.Unlock()

	if exists {
		e.publish(SeriesEvent{Name: name, Removed: true, Timestamp: time.Now()})
	}
	return exists
}

func (e *Engine) Get(name string) (chart.Series, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ent, exists := e.series[name]
	if !exists {
		return chart.Series{}, false
	}
	return ent.series.Clone(), true
}

// Lookup is Get with ErrSeriesNotFound for a missing name.
func (e *Engine) Lookup(name string) (chart.Series, error) {
	s, ok := e.Get(name)
	if !ok {
		return chart.Series{}, fmt.Errorf("%w: %q", ErrSeriesNotFound, name)
	}
	return s, nil
}

// List returns every stored series ordered by name.
func (e *Engine) List() []SeriesInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	infos := make([]SeriesInfo, 0, len(e.series))
	for name, ent := range e.series {
		info := SeriesInfo{
			Name:      name,
			Title:     ent.series.Title,
			Count:     ent.series.Len(),
			UpdatedAt: ent.updatedAt,
		}
		if n := ent.series.Len(); n > 0 {
			first := ent.series.Samples[0].Date
			last := ent.series.Samples[n-1].Date
			info.FirstDate = &first
			info.LastDate = &last
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Subscribe returns a channel of series events and a cancel func that
// unregisters and closes it. Events are dropped for a subscriber whose buffer
// is full.
func (e *Engine) Subscribe(buffer int) (<-chan SeriesEvent, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan SeriesEvent, buffer)

	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = ch
	e.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subscribers, id)
			e.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (e *Engine) publish(ev SeriesEvent) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			// Subscriber busy, skip
		}
	}
}
