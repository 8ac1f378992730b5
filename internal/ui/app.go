package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/nexttogo/internal/otel"
	"github.com/abelbrown/nexttogo/internal/race"
	"github.com/abelbrown/nexttogo/internal/state"
)

// AppConfig holds the command functions and optional dependencies for App.
type AppConfig struct {
	// SelectCategory applies and persists a category change.
	SelectCategory func(c race.Category) tea.Cmd
	// Refresh asks for an immediate fetch.
	Refresh func() tea.Cmd

	Ring     *otel.RingBuffer // debug overlay source (nil hides the overlay)
	Events   *otel.Logger
	Location *time.Location // start times are shown in this zone (nil = local)

	ShowDebug bool
	ShowHelp  bool
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold *state.Store. It receives snapshots via messages.
type App struct {
	cfg AppConfig

	snap    state.Snapshot
	hasSnap bool
	err     error // local failure, e.g. a rejected category change

	// pending is the category chosen by a key press whose CategorySelected
	// has not arrived yet. Snapshots taken before the change keep it.
	pending race.Category

	spinner   spinner.Model
	help      help.Model
	showDebug bool

	width  int
	height int
	ready  bool
}

// NewApp creates a new App from cfg.
func NewApp(cfg AppConfig) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	return App{
		cfg:       cfg,
		snap:      state.Snapshot{Selected: race.DefaultCategory, Loading: true},
		spinner:   s,
		help:      h,
		showDebug: cfg.ShowDebug && cfg.Ring != nil,
	}
}

// Init starts the spinner.
func (a App) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		return a, nil

	case StateChanged:
		a.applySnapshot(msg.Snapshot)
		return a, nil

	case CategorySelected:
		if msg.Category == a.pending {
			a.pending = ""
		}
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		a.applySnapshot(msg.Snapshot)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.cfg.Events.Trace(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Debug):
		if a.cfg.Ring != nil {
			a.showDebug = !a.showDebug
		}
		return a, nil

	case a.showDebug:
		// The overlay swallows everything else.
		return a, nil

	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil

	case key.Matches(msg, keys.Next):
		return a.selectCategory(a.snap.Selected.Next())

	case key.Matches(msg, keys.Prev):
		return a.selectCategory(a.snap.Selected.Prev())

	case key.Matches(msg, keys.Jump):
		i := int(msg.String()[0] - '1')
		if i >= 0 && i < len(race.Categories) {
			return a.selectCategory(race.Categories[i])
		}
		return a, nil

	case key.Matches(msg, keys.Refresh):
		if a.cfg.Refresh != nil {
			return a, a.cfg.Refresh()
		}
		return a, nil
	}

	return a, nil
}

// selectCategory switches the view immediately and hands the change to the
// injected command for persistence.
func (a App) selectCategory(c race.Category) (tea.Model, tea.Cmd) {
	if c == a.snap.Selected {
		return a, nil
	}
	a.snap.Selected = c
	a.err = nil
	if a.cfg.SelectCategory == nil {
		return a, nil
	}
	a.pending = c
	return a, a.cfg.SelectCategory(c)
}

// applySnapshot stores snap, keeping a pending selection in place of the
// one the snapshot carries.
func (a *App) applySnapshot(snap state.Snapshot) {
	a.snap = snap
	a.hasSnap = true
	if a.pending != "" {
		a.snap.Selected = a.pending
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showDebug {
		return debugOverlay(a.cfg.Ring, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	var sections []string
	sections = append(sections, a.renderHeader())
	sections = append(sections, RenderTabs(a.snap.Selected, a.width))
	sections = append(sections, "")

	if a.snap.Loading {
		sections = append(sections, HelpStyle.Render(a.spinner.View()+" Loading races..."))
	} else {
		sections = append(sections, RenderRaceList(a.snap.NextToGo(), a.snap.Now, a.cfg.Location, a.width))
	}

	if msg := a.errorText(); msg != "" {
		sections = append(sections, "", ErrorStyle.Width(a.width).Render("Error: "+msg))
	}

	if a.help.ShowAll {
		sections = append(sections, "", a.help.View(keys))
	}

	body := strings.Join(sections, "\n")

	// Pin the status bar to the bottom line.
	gap := a.height - lipgloss.Height(body) - 1
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + "\n" + a.renderStatusBar()
}

func (a App) renderHeader() string {
	title := TitleStyle.Render("Next To Go")
	if !a.hasSnap || a.snap.Now == 0 {
		return title
	}
	clockText := ClockStyle.Render(formatClock(a.snap.Now, a.cfg.Location))
	pad := a.width - lipgloss.Width(title) - lipgloss.Width(clockText)
	if pad < 1 {
		pad = 1
	}
	return title + strings.Repeat(" ", pad) + clockText
}

func (a App) renderStatusBar() string {
	var status string
	switch {
	case a.snap.Loading:
		status = a.spinner.View() + " Loading"
	case a.snap.Refreshing:
		status = a.spinner.View() + " Refreshing"
	case !a.snap.LastFetched.IsZero():
		status = fmt.Sprintf("Updated %s · %d shown", a.snap.LastFetched.In(a.location()).Format("15:04:05"), len(a.snap.NextToGo()))
	default:
		status = "Waiting"
	}
	return RenderStatusBar(status, a.help.ShortHelpView(keys.ShortHelp()), a.width)
}

func (a App) errorText() string {
	if a.err != nil {
		return a.err.Error()
	}
	return a.snap.Err
}

func (a App) location() *time.Location {
	if a.cfg.Location != nil {
		return a.cfg.Location
	}
	return time.Local
}

// formatClock renders an epoch second as HH:MM:SS in loc.
func formatClock(epoch int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(epoch, 0).In(loc).Format("15:04:05")
}

// Selected returns the category currently shown (for testing).
func (a App) Selected() race.Category {
	return a.snap.Selected
}

// Snapshot returns the last snapshot received (for testing).
func (a App) Snapshot() state.Snapshot {
	return a.snap
}

// ShowingDebug reports whether the debug overlay is open (for testing).
func (a App) ShowingDebug() bool {
	return a.showDebug
}
