// Package history keeps the bounded log of recognition events shown to
// operators.
package history

import (
	"sync"
	"time"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/recognizer"
)

// Entry is a recorded recognition result.
type Entry = recognizer.Result

// Tracker is a FIFO of at most cap entries in which a named identity
// appears at most once per window. Unknown faces are always recorded.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
	window  time.Duration

	listeners map[chan Entry]struct{}

	// Now is the clock; replaced in tests.
	Now func() time.Time
}

// NewTracker creates an empty tracker. A non-positive capacity uses the default of 50.
func NewTracker(capacity int, window time.Duration) *Tracker {
	if capacity <= 0 {
		capacity = constants.DefaultHistoryCap
	}
	return &Tracker{
		entries:   make([]Entry, 0, capacity),
		cap:       capacity,
		window:    window,
		listeners: make(map[chan Entry]struct{}),
		Now:       time.Now,
	}
}

// Record appends res unless the same identity was recorded within the
// window. It reports whether res was appended.
func (t *Tracker) Record(res recognizer.Result) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if res.Known() && t.isDuplicate(res.Name, t.Now()) {
		return false
	}

	t.entries = append(t.entries, res)
	for len(t.entries) > t.cap {
		t.entries = t.entries[1:]
	}
	for ch := range t.listeners {
		// Slow listeners miss entries rather than stall the frame loop.
		select {
		case ch <- res:
		default:
		}
	}
	return true
}

// Follow returns the current history and a channel receiving every entry
// Record appends afterwards. Both are taken under one lock, so no entry is
// in the snapshot and on the channel.
func (t *Tracker) Follow() ([]Entry, chan Entry) {
	ch := make(chan Entry, constants.HistoryListenerBuffer)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners[ch] = struct{}{}
	return t.snapshotLocked(), ch
}

// RemoveListener unregisters and closes ch.
func (t *Tracker) RemoveListener(ch chan Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.listeners[ch]; ok {
		delete(t.listeners, ch)
		close(ch)
	}
}

// isDuplicate scans newest first for name recorded after now - window.
// Entries whose time does not parse never count as duplicates.
func (t *Tracker) isDuplicate(name string, now time.Time) bool {
	cutoff := now.Add(-t.window)
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if e.Name != name {
			continue
		}
		at, err := time.ParseInLocation(constants.TimeLayout, e.Time, now.Location())
		if err != nil {
			continue
		}
		if at.After(cutoff) {
			return true
		}
	}
	return false
}

// All returns a copy of the history in insertion order.
func (t *Tracker) All() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
