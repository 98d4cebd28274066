package schedule

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrParticipantNotFound is returned when a lookup names an unknown
// participant.
var ErrParticipantNotFound = errors.New("participant not found in availability directory")

// AvailabilityProvider abstracts the calendar source. The engine only ever
// sees availability windows; provider-specific APIs stay behind this
// interface.
type AvailabilityProvider interface {
	Participant(id string) (Participant, error)
	Participants(ids []string) ([]Participant, error)
	// IDs lists known participants, sorted for stable output.
	IDs() []string
	// RemoveInterval marks [start, end) as busy for every given
	// participant, splitting windows as needed. Called after a booking is
	// confirmed.
	RemoveInterval(ids []string, start, end time.Time) error
}

// Directory is an in-memory AvailabilityProvider, seeded at startup or via
// the admin surface.
type Directory struct {
	mu      sync.RWMutex
	entries map[string][]Window
}

func NewDirectory() *Directory {
	return &Directory{entries: make(map[string][]Window)}
}

// Upsert replaces a participant's availability.
func (d *Directory) Upsert(id string, windows []Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id] = NormalizeWindows(windows)
}

func (d *Directory) Participant(id string) (Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	windows, ok := d.entries[id]
	if !ok {
		return Participant{}, ErrParticipantNotFound
	}
	return Participant{ID: id, Windows: append([]Window(nil), windows...)}, nil
}

func (d *Directory) Participants(ids []string) ([]Participant, error) {
	out := make([]Participant, 0, len(ids))
	for _, id := range ids {
		p, err := d.Participant(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *Directory) RemoveInterval(ids []string, start, end time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		windows, ok := d.entries[id]
		if !ok {
			return ErrParticipantNotFound
		}
		d.entries[id] = Subtract(windows, start, end)
	}
	return nil
}

// IDs lists known participants, sorted for stable output.
func (d *Directory) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.entries))
	for id := range d.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
