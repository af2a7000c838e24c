// Package repository holds the authoritative in-memory note collection.
// The collection is only ever replaced wholesale; readers always see a
// complete snapshot.
package repository

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/lumen/internal/apperr"
	"github.com/starford/lumen/internal/models"
	"github.com/starford/lumen/internal/stats"
)

// Snapshot is an immutable view of one loaded collection.
type Snapshot struct {
	Notes   []models.Note
	Stats   models.KnowledgeStats
	Version uint64

	byID   map[string]int
	byPath map[string]int
}

// Listener is notified synchronously after every Replace.
type Listener func(Snapshot)

// Repository stores the current snapshot behind an atomic pointer.
type Repository struct {
	current atomic.Pointer[Snapshot]
	now     func() time.Time

	// mu serialises writers and guards listeners.
	mu        sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source used for lastUpdated.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates an empty repository. Stats report no lastUpdated until the
// first Replace.
func New(opts ...Option) *Repository {
	r := &Repository{
		now:       time.Now,
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current.Store(&Snapshot{
		Notes:  []models.Note{},
		byID:   map[string]int{},
		byPath: map[string]int{},
	})
	return r
}

// Replace swaps in notes as the whole collection, recomputes stats and
// notifies listeners. The slice is copied.
func (r *Repository) Replace(notes []models.Note) Snapshot {
	owned := make([]models.Note, len(notes))
	copy(owned, notes)

	snap := &Snapshot{
		Notes:  owned,
		Stats:  stats.Aggregate(owned, r.now()),
		byID:   make(map[string]int, len(owned)),
		byPath: make(map[string]int, len(owned)),
	}
	for i := range owned {
		if _, dup := snap.byID[owned[i].ID]; !dup {
			snap.byID[owned[i].ID] = i
		}
		if _, dup := snap.byPath[owned[i].Path]; !dup {
			snap.byPath[owned[i].Path] = i
		}
	}

	r.mu.Lock()
	snap.Version = r.current.Load().Version + 1
	r.current.Store(snap)
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	for _, l := range listeners {
		l(*snap)
	}
	return *snap
}

// Snapshot returns the current snapshot.
func (r *Repository) Snapshot() Snapshot {
	return *r.current.Load()
}

// All returns the current notes. The slice is shared and must not be
// modified.
func (r *Repository) All() []models.Note {
	return r.current.Load().Notes
}

// Len returns the number of notes held.
func (r *Repository) Len() int {
	return len(r.current.Load().Notes)
}

// Stats returns the stats computed at the last Replace.
func (r *Repository) Stats() models.KnowledgeStats {
	return r.current.Load().Stats
}

// Populated reports whether Replace has been called at least once.
func (r *Repository) Populated() bool {
	return r.current.Load().Version > 0
}

// Get looks a note up by id.
func (r *Repository) Get(id string) (models.Note, error) {
	s := r.current.Load()
	i, ok := s.byID[id]
	if !ok {
		return models.Note{}, apperr.ErrNotFound
	}
	return s.Notes[i], nil
}

// ByPath looks a note up by its path.
func (r *Repository) ByPath(path string) (models.Note, error) {
	s := r.current.Load()
	i, ok := s.byPath[path]
	if !ok {
		return models.Note{}, apperr.ErrNotFound
	}
	return s.Notes[i], nil
}

// Subscribe registers l and returns a function that removes it.
func (r *Repository) Subscribe(l Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}
