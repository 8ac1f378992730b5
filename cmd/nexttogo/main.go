// Command nexttogo is a terminal dashboard showing the next five races to
// jump for the selected category.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/nexttogo/internal/config"
	"github.com/abelbrown/nexttogo/internal/coord"
	"github.com/abelbrown/nexttogo/internal/fetch"
	"github.com/abelbrown/nexttogo/internal/logging"
	"github.com/abelbrown/nexttogo/internal/otel"
	"github.com/abelbrown/nexttogo/internal/race"
	"github.com/abelbrown/nexttogo/internal/state"
	"github.com/abelbrown/nexttogo/internal/store"
	"github.com/abelbrown/nexttogo/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "nexttogo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultDataDir())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := logging.Init(cfg.DataDir, logging.ParseLevel(cfg.Log.Level)); err != nil {
		return err
	}
	defer logging.Close()

	// Event log + ring buffer for the debug overlay
	eventFile, err := os.OpenFile(cfg.EventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer eventFile.Close()
	events := otel.NewLogger(eventFile)
	defer events.Close()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)

	events.Info(otel.KindStartup, "main", "nexttogo starting")
	logging.Info("config loaded", "data_dir", cfg.DataDir, "base_url", cfg.API.BaseURL)

	// Preferences are optional: without them the category just isn't remembered.
	var prefs state.PreferenceStore
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		logging.Warn("preferences unavailable", "path", cfg.DBPath(), "err", err)
		events.Error(otel.KindPrefError, "main", err)
	} else {
		defer st.Close()
		prefs = st
	}

	fetcher := fetch.NewFetcher(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, cfg.API.RequestsPerSecond)
	clk := clockwork.NewRealClock()
	races := state.New(fetcher, prefs, clk, events)
	coordinator := coord.NewCoordinator(coord.HooksFor(races), clk, events)

	app := ui.NewApp(ui.AppConfig{
		SelectCategory: func(c race.Category) tea.Cmd {
			return func() tea.Msg {
				err := races.SetCategory(c)
				return ui.CategorySelected{Category: c, Snapshot: races.Snapshot(), Err: err}
			}
		},
		Refresh: func() tea.Cmd {
			return func() tea.Msg {
				coordinator.Refresh()
				return nil
			}
		},
		Ring:      ring,
		Events:    events,
		ShowDebug: cfg.UI.ShowDebug,
		ShowHelp:  cfg.UI.ShowHelp,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	coordinator.Start(gctx, program)

	g.Go(func() error {
		// Quitting the UI stops everything else.
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("ui: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		coordinator.Wait()
		return nil
	})

	err = g.Wait()
	if err != nil {
		logging.Error("application error", "err", err)
		events.Error(otel.KindError, "main", err)
	}
	events.Info(otel.KindShutdown, "main", "nexttogo exiting")
	logging.Info("nexttogo exiting normally")
	return err
}
