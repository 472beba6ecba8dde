// Package store owns the authoritative in-memory record set and is the single
// point of mutation for the whole application.
package store

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/centavo-app/centavo/internal/gateway"
	"github.com/centavo-app/centavo/internal/models"
)

// EventKind classifies a store change notification.
type EventKind string

// Event kinds. Loaded is informational: it does not mark the store dirty.
const (
	KindCreated EventKind = "created"
	KindUpdated EventKind = "updated"
	KindDeleted EventKind = "deleted"
	KindLoaded  EventKind = "loaded"
)

// Event is a store change notification. Observers receive it only after the
// mutation has been fully applied.
type Event struct {
	Kind    EventKind
	ID      string
	Version uint64
}

// IsMutation reports whether the event marked the store dirty.
func (e Event) IsMutation() bool {
	return e.Kind == KindCreated || e.Kind == KindUpdated || e.Kind == KindDeleted
}

// Store is the single source of truth for the record set. Mutations are
// serialized by a mutex; observers only ever see copies, never partial state.
type Store struct {
	gw     gateway.Provider
	logger *slog.Logger

	mu      sync.Mutex
	records models.RecordSet
	dirty   bool
	version uint64
	subs    []chan Event
}

// New creates a Store backed by the given gateway. The store starts empty;
// call Load to pull durable state.
func New(gw gateway.Provider, logger *slog.Logger) *Store {
	return &Store{gw: gw, logger: logger}
}

// Load replaces the whole set with the gateway's durable state and clears the
// dirty flag. It fails open: on a gateway error the store keeps an empty set
// and logs a warning, so the application stays usable with no data.
func (s *Store) Load() {
	set, err := s.gw.Load()
	if err != nil {
		s.logger.Warn("store: load failed, starting empty", slog.String("error", err.Error()))
		set = nil
	}

	s.mu.Lock()
	s.records = set
	s.dirty = false
	version := s.version
	s.mu.Unlock()

	s.logger.Info("store: loaded", slog.Int("records", len(set)))
	s.emit(Event{Kind: KindLoaded, Version: version})
}

// Add assigns a fresh unique id, appends the record, marks the store dirty,
// and emits exactly one change event. It returns the populated record.
func (s *Store) Add(rec models.Record) models.Record {
	rec.ID = uuid.NewString()

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.dirty = true
	s.version++
	version := s.version
	s.mu.Unlock()

	s.emit(Event{Kind: KindCreated, ID: rec.ID, Version: version})
	return rec
}

// Update merges the patch's set fields into the record with the given id,
// preserving unset fields. Unknown ids are a silent no-op: no dirty flag, no
// event. Returns the updated record and whether it was found.
func (s *Store) Update(id string, patch models.RecordPatch) (models.Record, bool) {
	s.mu.Lock()
	idx := -1
	for i := range s.records {
		if s.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.Record{}, false
	}
	patch.Apply(&s.records[idx])
	updated := s.records[idx]
	s.dirty = true
	s.version++
	version := s.version
	s.mu.Unlock()

	s.emit(Event{Kind: KindUpdated, ID: id, Version: version})
	return updated, true
}

// Delete removes the record with the given id. Unknown ids are a silent
// no-op. Deletion is permanent; there is no history.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.records {
		if s.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.dirty = true
	s.version++
	version := s.version
	s.mu.Unlock()

	s.emit(Event{Kind: KindDeleted, ID: id, Version: version})
	return true
}

// Snapshot returns a copy of the current set for read-only use. Reads never
// touch the dirty flag.
func (s *Store) Snapshot() models.RecordSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Clone()
}

// Get returns the record with the given id, if present.
func (s *Store) Get(id string) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.ByID(id)
}

// Dirty reports whether in-memory state has diverged from the last durable write.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Version returns the monotonic mutation counter.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// ClearDirty clears the dirty flag only when no mutation has happened since
// the given version. The scheduler calls this after a successful save; a false
// return means new deltas landed mid-save and another flush is needed.
func (s *Store) ClearDirty(version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		return false
	}
	s.dirty = false
	return true
}

// Subscribe returns a buffered channel of change events. Delivery is
// best-effort: a slow subscriber's events are dropped rather than blocking a
// mutation (the dirty flag still records that a flush is owed).
func (s *Store) Subscribe() <-chan Event {
	ch := make(chan Event, 64)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) emit(ev Event) {
	s.mu.Lock()
	subs := make([]chan Event, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("store: dropped event for slow subscriber",
				slog.String("kind", string(ev.Kind)))
		}
	}
}
