// Package ledger exposes the application-level operations shared by the HTTP
// API and the MCP server.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/centavo-app/centavo/internal/apperr"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/report"
	"github.com/centavo-app/centavo/internal/store"
)

// Flusher forces unsaved state to durable storage.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Service wraps the store with validation, filtering and reporting.
type Service struct {
	store   *store.Store
	flusher Flusher
	logger  *slog.Logger
}

func NewService(st *store.Store, flusher Flusher, logger *slog.Logger) *Service {
	return &Service{store: st, flusher: flusher, logger: logger}
}

// List returns the snapshot, optionally narrowed by record type and YYYY-MM
// month. Empty filters match everything.
func (s *Service) List(typ models.RecordType, month string) models.RecordSet {
	set := s.store.Snapshot()
	if typ != "" {
		set = set.OfType(typ)
	}
	if month != "" {
		set = set.InMonth(month)
	}
	return set
}

// Get returns one record by id.
func (s *Service) Get(id string) (models.Record, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return models.Record{}, fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	return rec, nil
}

// Create validates and stores a new record. The id is assigned here; one
// submitted by the caller is discarded.
func (s *Service) Create(rec models.Record) (models.Record, error) {
	rec.ID = ""
	if err := rec.Validate(); err != nil {
		return models.Record{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}
	return s.store.Add(rec), nil
}

// Update applies a partial change. The merged result is validated before it
// reaches the store, so a patch cannot corrupt a valid record.
func (s *Service) Update(id string, patch models.RecordPatch) (models.Record, error) {
	current, ok := s.store.Get(id)
	if !ok {
		return models.Record{}, fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	merged := current
	patch.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return models.Record{}, fmt.Errorf("%w: %s", apperr.ErrInvalid, err)
	}

	updated, ok := s.store.Update(id, patch)
	if !ok {
		return models.Record{}, fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	return updated, nil
}

// Delete removes a record. Unknown ids are not an error; the end state is the
// same either way.
func (s *Service) Delete(id string) {
	if !s.store.Delete(id) {
		s.logger.Debug("ledger: delete of unknown id", slog.String("id", id))
	}
}

// Summary projects the current snapshot for one month.
func (s *Service) Summary(month string) report.Summary {
	return report.MonthSummary(s.store.Snapshot(), month)
}

// Snapshot returns a copy of every record.
func (s *Service) Snapshot() models.RecordSet {
	return s.store.Snapshot()
}

// Flush persists unsaved state immediately.
func (s *Service) Flush(ctx context.Context) error {
	return s.flusher.Flush(ctx)
}
