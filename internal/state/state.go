// Package state owns the dashboard's application state: the fetched races,
// the selected category, the clock reading shown on screen, and the
// loading/refreshing/error flags. The visible "next to go" list is never
// stored; it is derived from a Snapshot on every read.
package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abelbrown/nexttogo/internal/clock"
	"github.com/abelbrown/nexttogo/internal/filter"
	"github.com/abelbrown/nexttogo/internal/logging"
	"github.com/abelbrown/nexttogo/internal/otel"
	"github.com/abelbrown/nexttogo/internal/race"
	"github.com/abelbrown/nexttogo/internal/store"
)

// ErrUnknownCategory is returned when selecting a category outside race.Categories.
var ErrUnknownCategory = errors.New("unknown category")

// RaceFetcher retrieves about count races in next-to-go order.
type RaceFetcher interface {
	NextRaces(ctx context.Context, count int) ([]race.Race, error)
}

// PreferenceStore persists small string values across restarts.
type PreferenceStore interface {
	Preference(key string) (string, bool, error)
	SetPreference(key, value string) error
}

// Snapshot is a point-in-time copy of the state, safe to use without locks.
type Snapshot struct {
	Races       []race.Race
	Selected    race.Category
	Now         int64 // epoch seconds at the last tick
	Loading     bool  // no fetch has finished yet
	Refreshing  bool  // a fetch after the first is in progress
	Err         string
	LastFetched time.Time
}

// NextToGo returns the races to display for this snapshot.
func (s Snapshot) NextToGo() []race.Race {
	return filter.NextToGo(s.Races, s.Selected, s.Now)
}

// ExpiryThreshold returns the epoch second at which the soonest visible race
// expires. ok is false when nothing is visible.
func (s Snapshot) ExpiryThreshold() (threshold int64, ok bool) {
	visible := s.NextToGo()
	if len(visible) == 0 {
		return 0, false
	}
	return clock.Threshold(visible[0].AdvertisedStart), true
}

// Store is the single owner of application state.
// Thread-safety: All methods are safe for concurrent use. The lock is never
// held across a network call.
type Store struct {
	fetcher RaceFetcher
	prefs   PreferenceStore
	clock   clockwork.Clock
	events  *otel.Logger

	mu          sync.RWMutex
	races       []race.Race
	selected    race.Category
	now         int64
	loading     bool
	refreshing  bool
	errMsg      string
	lastFetched time.Time
}

// New creates a Store in its initial loading state. The selected category
// is restored from prefs, falling back to race.DefaultCategory when the
// stored value is missing, unreadable or unknown. events may be nil.
func New(fetcher RaceFetcher, prefs PreferenceStore, clk clockwork.Clock, events *otel.Logger) *Store {
	s := &Store{
		fetcher: fetcher,
		prefs:   prefs,
		clock:   clk,
		events:  events,
		loading: true,
		now:     clock.Now(clk),
	}
	s.selected = s.loadSelected()
	return s
}

func (s *Store) loadSelected() race.Category {
	if s.prefs == nil {
		return race.DefaultCategory
	}

	value, ok, err := s.prefs.Preference(store.KeySelectedCategory)
	if err != nil {
		logging.Warn("failed to read selected category", "err", err)
		s.events.Error(otel.KindPrefError, "state", err)
		return race.DefaultCategory
	}
	if !ok {
		return race.DefaultCategory
	}

	c, valid := race.ParseCategory(value)
	if !valid {
		logging.Warn("ignoring unknown stored category", "value", value)
		return race.DefaultCategory
	}
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPrefLoad, Comp: "state", Category: c.Label()})
	return c
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	races := make([]race.Race, len(s.races))
	copy(races, s.races)

	return Snapshot{
		Races:       races,
		Selected:    s.selected,
		Now:         s.now,
		Loading:     s.loading,
		Refreshing:  s.refreshing,
		Err:         s.errMsg,
		LastFetched: s.lastFetched,
	}
}

// NextToGo returns the currently visible races.
func (s *Store) NextToGo() []race.Race {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.NextToGo(s.races, s.selected, s.now)
}

// VisibleCount returns len(NextToGo()).
func (s *Store) VisibleCount() int {
	return len(s.NextToGo())
}

// ExpiryThreshold returns when the soonest visible race expires.
func (s *Store) ExpiryThreshold() (int64, bool) {
	return s.Snapshot().ExpiryThreshold()
}

// Tick records the current clock reading. The stored time never moves
// backwards.
func (s *Store) Tick() {
	now := clock.Now(s.clock)

	s.mu.Lock()
	defer s.mu.Unlock()
	if now > s.now {
		s.now = now
	}
}

// SetCategory selects c and persists it. A failed write is logged and
// otherwise ignored; the in-memory selection still changes.
func (s *Store) SetCategory(c race.Category) error {
	if !c.Valid() {
		return ErrUnknownCategory
	}

	s.mu.Lock()
	s.selected = c
	s.mu.Unlock()

	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCategorySelect, Comp: "state", Category: c.Label()})

	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.SetPreference(store.KeySelectedCategory, string(c)); err != nil {
		logging.Warn("failed to persist selected category", "category", c.Label(), "err", err)
		s.events.Error(otel.KindPrefError, "state", err)
		return nil
	}
	s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPrefSave, Comp: "state", Category: c.Label()})
	return nil
}
