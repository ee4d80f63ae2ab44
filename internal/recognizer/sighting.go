package recognizer

import (
	"sync"
	"time"
)

// Sightings remembers when each identity was last recorded, so a person
// standing in front of the camera is reported once per window.
type Sightings struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// NewSightings creates an empty set that suppresses repeats within window.
func NewSightings(window time.Duration) *Sightings {
	return &Sightings{window: window, last: make(map[string]time.Time)}
}

// Seen reports whether name was recorded less than window before now.
// A suppressed sighting does not refresh the timestamp; otherwise now is
// recorded as the new last sighting.
func (s *Sightings) Seen(name string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.last[name]; ok && now.Sub(last) < s.window {
		return true
	}
	s.last[name] = now
	return false
}

// Reset forgets every sighting.
func (s *Sightings) Reset() {
	s.mu.Lock()
	s.last = make(map[string]time.Time)
	s.mu.Unlock()
}
