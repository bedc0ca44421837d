package watcher

import (
	"slices"
	"sync"
	"time"
)

// Debouncer coalesces events per file name and flushes them once no new event
// arrived for the window, or when the batch is full. Only the latest event per
// file is kept.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	events   map[string]FileEvent
	mu       sync.Mutex
	timer    *time.Timer
	onFlush  func([]FileEvent)
	stopped  bool
}

// NewDebouncer creates a Debouncer that calls onFlush with each batch.
func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]FileEvent)) *Debouncer {
	if maxBatch <= 0 {
		maxBatch = 1
	}
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		events:   make(map[string]FileEvent),
		onFlush:  onFlush,
	}
}

// Add records event, restarting the debounce window.
func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.events[event.Filename] = event

	if len(d.events) >= d.maxBatch {
		d.flushLocked()
		return
	}

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if !d.stopped {
			d.flushLocked()
		} else {
			d.mu.Unlock()
		}
	})

	d.mu.Unlock()
}

// flushLocked must be called with mu held; it releases mu.
func (d *Debouncer) flushLocked() {
	events := make([]FileEvent, 0, len(d.events))
	for _, event := range d.events {
		events = append(events, event)
	}
	slices.SortFunc(events, func(a, b FileEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	d.events = make(map[string]FileEvent)

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.mu.Unlock()

	if len(events) > 0 && d.onFlush != nil {
		d.onFlush(events)
	}
}

// Stop flushes pending events and ignores any later ones.
func (d *Debouncer) Stop() {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if len(d.events) > 0 {
		d.flushLocked()
	} else {
		d.mu.Unlock()
	}
}
