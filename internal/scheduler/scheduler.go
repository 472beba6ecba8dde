// Package scheduler debounces store mutations into whole-set saves through the
// persistence gateway.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/centavo-app/centavo/internal/gateway"
	"github.com/centavo-app/centavo/internal/store"
)

const defaultDebounce = 2 * time.Second

// Scheduler owns the single writer path to the gateway. Mutations arm a
// debounce timer; further mutations inside the window reset it, so a burst
// costs one save. On shutdown any unsaved state gets a final flush.
type Scheduler struct {
	store    *store.Store
	gw       gateway.Provider
	debounce time.Duration
	logger   *slog.Logger
	events   <-chan store.Event
	flushCh  chan chan error
}

// New subscribes to the store immediately, so mutations made before Run starts
// still arm the debounce window.
func New(st *store.Store, gw gateway.Provider, debounce time.Duration, logger *slog.Logger) *Scheduler {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Scheduler{
		store:    st,
		gw:       gw,
		debounce: debounce,
		logger:   logger,
		events:   st.Subscribe(),
		flushCh:  make(chan chan error, 1),
	}
}

// Run blocks until ctx is cancelled, then performs a final flush.
func (s *Scheduler) Run(ctx context.Context) error {
	events := s.events
	s.logger.Info("scheduler: started", slog.Duration("debounce", s.debounce))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(s.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(s.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if err := s.flush(); err != nil {
				s.logger.Error("scheduler: final flush failed", slog.String("error", err.Error()))
			}
			s.logger.Info("scheduler: stopped")
			return nil

		case <-timerCh:
			if err := s.flush(); err == nil && s.store.Dirty() {
				// A mutation raced the save; pick it up in a fresh window.
				schedule()
			}

		case reply := <-s.flushCh:
			if timer != nil {
				timer.Stop()
			}
			reply <- s.flush()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.IsMutation() {
				schedule()
			}
		}
	}
}

// Flush forces an immediate save of unsaved state, bypassing the debounce
// window. Used by the explicit save endpoint and shutdown paths.
func (s *Scheduler) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case s.flushCh <- reply:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flush writes the current snapshot when the store is dirty. On failure the
// dirty flag stays set and in-memory state is untouched, so the next mutation
// retries. ClearDirty only lands when no mutation arrived after the snapshot.
func (s *Scheduler) flush() error {
	if !s.store.Dirty() {
		return nil
	}
	version := s.store.Version()
	snap := s.store.Snapshot()

	if err := s.gw.Save(snap); err != nil {
		s.logger.Error("scheduler: save failed, keeping state dirty",
			slog.Int("records", len(snap)),
			slog.String("error", err.Error()))
		return err
	}
	if s.store.ClearDirty(version) {
		s.logger.Info("scheduler: saved", slog.Int("records", len(snap)))
	} else {
		s.logger.Debug("scheduler: saved stale snapshot, newer changes pending",
			slog.Int("records", len(snap)))
	}
	return nil
}
