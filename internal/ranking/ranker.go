package ranking

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gamesforgood/catalog/internal/analytics"
	"github.com/gamesforgood/catalog/internal/domain"
)

// PopularityWindow is how far back visit events count toward a game's
// popularity score.
const PopularityWindow = 30 * 24 * time.Hour

// visitCategory is the analytics event category for gameplay visits.
const visitCategory = "game"

// EventSource supplies visit events for the tally. The analytics client
// satisfies it.
type EventSource interface {
	VisitEvents(ctx context.Context, category string, since time.Time) ([]analytics.VisitEvent, error)
}

// PopularityStore applies the bulk popularity rewrite. The game repository
// satisfies it.
type PopularityStore interface {
	SetPopularity(ctx context.Context, counts map[string]int) error
}

// Locker serializes recompute runs across processes. Acquire returns
// ok=false when another run holds the lock.
type Locker interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// Ranker recomputes every game's popularity from recent visit events. A
// run is idempotent: scores are absolute tallies over the window, never
// increments, so re-running over the same events lands on the same state.
type Ranker struct {
	source EventSource
	store  PopularityStore
	locker Locker
	logger zerolog.Logger
	now    func() time.Time
}

// NewRanker creates a popularity ranker.
func NewRanker(source EventSource, store PopularityStore, locker Locker, logger zerolog.Logger) *Ranker {
	if locker == nil {
		locker = noopLocker{}
	}
	return &Ranker{
		source: source,
		store:  store,
		locker: locker,
		logger: logger.With().Str("component", "ranking").Logger(),
		now:    time.Now,
	}
}

// Recompute fetches the visit window, tallies visits per game name, and
// rewrites the whole catalog's scores. A fetch failure aborts before any
// write, leaving all scores untouched.
func (r *Ranker) Recompute(ctx context.Context) error {
	release, ok, err := r.locker.Acquire(ctx)
	if err != nil {
		return &domain.UpstreamError{Collaborator: "recompute lock", Err: err}
	}
	if !ok {
		return domain.ErrRecomputeInProgress
	}
	defer release()

	since := r.now().Add(-PopularityWindow)
	events, err := r.source.VisitEvents(ctx, visitCategory, since)
	if err != nil {
		return &domain.UpstreamError{Collaborator: "analytics service", Err: err}
	}

	counts := make(map[string]int)
	for _, event := range events {
		if event.GameName == "" {
			continue
		}
		counts[event.GameName]++
	}

	if err := r.store.SetPopularity(ctx, counts); err != nil {
		return err
	}

	r.logger.Info().
		Int("events", len(events)).
		Int("games_visited", len(counts)).
		Time("window_start", since).
		Msg("popularity recomputed")
	return nil
}

// noopLocker admits every run. Used when no shared lock backend is
// configured, for single-process deployments.
type noopLocker struct{}

func (noopLocker) Acquire(context.Context) (func(), bool, error) {
	return func() {}, true, nil
}
