// Package coord drives the dashboard's refresh cycle: a one-second clock
// tick plus the two fetch triggers (expiry edge and low visible count).
package coord

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/abelbrown/nexttogo/internal/clock"
	"github.com/abelbrown/nexttogo/internal/filter"
	"github.com/abelbrown/nexttogo/internal/logging"
	"github.com/abelbrown/nexttogo/internal/otel"
	"github.com/abelbrown/nexttogo/internal/state"
	"github.com/abelbrown/nexttogo/internal/ui"
)

// tickInterval is the time between clock ticks.
const tickInterval = time.Second

// Trigger reasons recorded on poll.trigger events.
const (
	reasonMount    = "mount"
	reasonExpiry   = "expiry"
	reasonLowCount = "low-count"
	reasonManual   = "manual"
)

// Hooks are the state operations the coordinator drives.
// Tick, Poll, ExpiryThreshold and VisibleCount are required.
type Hooks struct {
	Tick            func()
	Poll            func(ctx context.Context)
	ExpiryThreshold func() (int64, bool)
	VisibleCount    func() int

	// Snapshot is optional; when set, a ui.StateChanged carrying its result
	// is sent after every tick and every completed fetch.
	Snapshot func() state.Snapshot
}

// HooksFor wires a *state.Store into Hooks.
func HooksFor(s *state.Store) Hooks {
	return Hooks{
		Tick:            s.Tick,
		Poll:            s.FetchEnsuringFive,
		ExpiryThreshold: s.ExpiryThreshold,
		VisibleCount:    s.VisibleCount,
		Snapshot:        s.Snapshot,
	}
}

// Notifier receives UI messages. *tea.Program satisfies it.
type Notifier interface {
	Send(msg tea.Msg)
}

// Coordinator runs the tick loop.
// Uses context cancellation as the ONLY stop mechanism.
//
// All bookkeeping (inFlight, prev) belongs to the loop goroutine. Fetches run
// on one extra goroutine at most and report back through fetched.
type Coordinator struct {
	hooks    Hooks
	clock    clockwork.Clock
	interval time.Duration
	events   *otel.Logger
	notifier Notifier

	fetched chan struct{}
	refresh chan struct{}

	inFlight bool
	prev     int64 // seconds until expiry recorded at the previous tick
	hasPrev  bool  // false when no threshold was defined

	wg sync.WaitGroup
}

// NewCoordinator creates a Coordinator ticking once a second on clk.
// events may be nil.
func NewCoordinator(hooks Hooks, clk clockwork.Clock, events *otel.Logger) *Coordinator {
	return &Coordinator{
		hooks:    hooks,
		clock:    clk,
		interval: tickInterval,
		events:   events,
		fetched:  make(chan struct{}, 1),
		refresh:  make(chan struct{}, 1),
	}
}

// Start ticks the clock, runs one fetch to completion, then ticks every
// second until ctx is cancelled. notifier may be nil.
func (c *Coordinator) Start(ctx context.Context, notifier Notifier) {
	c.notifier = notifier

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
}

// Wait blocks until the loop goroutine exits.
// Call after canceling the context passed to Start. A fetch that was already
// outstanding is not cancelled and may still update state afterwards.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Refresh asks the loop to fetch now. It is ignored while a fetch is in
// flight, and requests made before the loop drains the previous one are
// coalesced. Safe to call from any goroutine.
func (c *Coordinator) Refresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

func (c *Coordinator) run(ctx context.Context) {
	c.mount(ctx)
	if ctx.Err() != nil {
		return
	}

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			c.handleTick(ctx)
		case <-c.fetched:
			c.finishFetch()
		case <-c.refresh:
			c.startFetch(ctx, reasonManual)
			c.notify()
		}
	}
}

// mount performs the activation sequence: tick, fetch, record the
// until-expiry baseline. It waits for the first fetch but gives up when ctx
// is cancelled; the fetch itself keeps running on its detached context.
func (c *Coordinator) mount(ctx context.Context) {
	c.hooks.Tick()
	c.notify()

	c.startFetch(ctx, reasonMount)
	select {
	case <-ctx.Done():
	case <-c.fetched:
		c.finishFetch()
	}
}

// handleTick runs once per timer tick on the loop goroutine.
func (c *Coordinator) handleTick(ctx context.Context) {
	c.hooks.Tick()
	defer c.notify()

	if c.inFlight {
		c.events.Trace(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPollSkip, Comp: "coord", Reason: "in-flight"})
		return
	}

	cur, ok := c.untilExpiry()
	c.events.Trace(otel.Event{Level: otel.LevelDebug, Kind: otel.KindTick, Comp: "coord", Extra: map[string]any{"until_expiry": cur, "has_threshold": ok}})

	if c.hasPrev && ok && c.prev > 0 && cur <= 0 {
		c.startFetch(ctx, reasonExpiry)
		return
	}

	if visible := c.hooks.VisibleCount(); visible < filter.MaxVisible {
		c.startFetch(ctx, reasonLowCount)
		return
	}

	c.prev, c.hasPrev = cur, ok
}

// startFetch runs Poll on its own goroutine. The fetch context is detached
// from ctx so stopping the coordinator does not abort it.
func (c *Coordinator) startFetch(ctx context.Context, reason string) {
	if c.inFlight {
		return
	}
	c.inFlight = true

	logging.Debug("poll triggered", "reason", reason)
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollTrigger, Comp: "coord", Reason: reason})

	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		c.hooks.Poll(fetchCtx)
		c.fetched <- struct{}{}
	}()
}

// finishFetch records the until-expiry baseline once a fetch has resolved.
func (c *Coordinator) finishFetch() {
	c.prev, c.hasPrev = c.untilExpiry()
	c.inFlight = false
	c.notify()
}

// untilExpiry returns seconds until the current expiry threshold.
// ok is false when no threshold is defined.
func (c *Coordinator) untilExpiry() (int64, bool) {
	threshold, ok := c.hooks.ExpiryThreshold()
	if !ok {
		return 0, false
	}
	return threshold - clock.Now(c.clock), true
}

func (c *Coordinator) notify() {
	if c.notifier == nil || c.hooks.Snapshot == nil {
		return
	}
	c.notifier.Send(ui.StateChanged{Snapshot: c.hooks.Snapshot()})
}
