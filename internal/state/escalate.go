package state

import (
	"context"

	"github.com/abelbrown/nexttogo/internal/filter"
	"github.com/abelbrown/nexttogo/internal/logging"
	"github.com/abelbrown/nexttogo/internal/otel"
)

// Escalation schedule: request InitialCount races, then CountStep more on
// each retry, for at most MaxAttempts requests (10, 20, 30, 40, 50).
const (
	InitialCount = 10
	CountStep    = 10
	MaxAttempts  = 5
)

// fallbackErrMsg is shown when a failure carries no message of its own.
const fallbackErrMsg = "Failed to fetch races"

// FetchEnsuringFive fetches races until at least filter.MaxVisible of them
// are visible for the selected category, asking for a larger batch on each
// attempt. Every attempt replaces the whole race list; batches are never
// merged. A failed attempt ends the call and is recorded as the error
// message. It never returns an error: the caller only needs to know that
// the call is over, which is also when Loading and Refreshing become false.
func (s *Store) FetchEnsuringFive(ctx context.Context) {
	s.mu.Lock()
	firstLoad := s.loading
	s.errMsg = ""
	if !firstLoad {
		s.refreshing = true
	}
	category := s.selected
	s.mu.Unlock()

	start := s.clock.Now()
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchStart, Comp: "state", Category: category.Label()})

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.refreshing = false
		s.mu.Unlock()
	}()

	count := InitialCount
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		races, err := s.fetcher.NextRaces(ctx, count)
		if err != nil {
			msg := errorMessage(err)
			s.mu.Lock()
			s.errMsg = msg
			s.mu.Unlock()

			logging.Warn("race fetch failed", "count", count, "attempt", attempt, "err", err)
			s.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFetchError, Comp: "state", Count: count, Attempt: attempt, Err: msg})
			return
		}

		s.mu.Lock()
		s.races = races
		s.lastFetched = s.clock.Now()
		visible := len(filter.NextToGo(s.races, s.selected, s.now))
		s.mu.Unlock()

		s.events.Emit(otel.Event{
			Level:   otel.LevelDebug,
			Kind:    otel.KindFetchAttempt,
			Comp:    "state",
			Count:   count,
			Attempt: attempt,
			Visible: visible,
			Extra:   map[string]any{"returned": len(races)},
		})

		if visible >= filter.MaxVisible {
			break
		}
		count += CountStep
	}

	s.mu.RLock()
	visible := len(filter.NextToGo(s.races, s.selected, s.now))
	s.mu.RUnlock()

	s.events.Emit(otel.Event{
		Level:   otel.LevelInfo,
		Kind:    otel.KindFetchComplete,
		Comp:    "state",
		Dur:     s.clock.Since(start),
		Visible: visible,
	})
}

// errorMessage turns err into the text stored for display.
func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackErrMsg
}
