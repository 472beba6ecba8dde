package recurring

import (
	"context"
	"log/slog"
	"time"

	"github.com/centavo-app/centavo/internal/store"
)

// Runner keeps the store caught up with owed generated records. It runs one
// pass at startup and another after every store mutation, so activating a
// subscription mid-month charges it immediately.
type Runner struct {
	store  *store.Store
	logger *slog.Logger
	events <-chan store.Event
	now    func() time.Time
}

func NewRunner(st *store.Store, logger *slog.Logger) *Runner {
	return &Runner{store: st, logger: logger, events: st.Subscribe(), now: time.Now}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	events := r.events
	r.logger.Info("recurring: started")

	r.pass()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("recurring: stopped")
			return nil
		case <-events:
			// Coalesce bursts before generating.
			for {
				select {
				case <-events:
					continue
				default:
				}
				break
			}
			r.pass()
		}
	}
}

// pass folds missing records into the store until none are owed. Each Add can
// itself unlock more generation only through records this pass just produced,
// so two iterations always reach the fixpoint; the bound guards against a
// misbehaving generator looping forever.
func (r *Runner) pass() {
	for i := 0; i < 2; i++ {
		missing := Missing(r.store.Snapshot(), r.now())
		if len(missing) == 0 {
			return
		}
		for _, rec := range missing {
			added := r.store.Add(rec)
			r.logger.Info("recurring: generated",
				slog.String("id", added.ID),
				slog.String("type", string(added.Type)),
				slog.String("relatedId", added.RelatedID),
				slog.String("date", added.Date))
		}
	}
}
