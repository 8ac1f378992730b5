package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/nexttogo/internal/otel"
)

// debugPanelChrome is the number of lines DebugPanel adds around its content
// (border plus vertical padding). Keep in sync with the style.
const debugPanelChrome = 4

// debugRecentEvents is how many events the overlay lists.
const debugRecentEvents = 20

// triggerReasons is the display order of poll.trigger reasons.
var triggerReasons = []string{"mount", "expiry", "low-count", "manual"}

// debugOverlay renders fetch counters, poll triggers by reason and the most
// recent events. Returns "" without a ring.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	events := ring.Snapshot()

	var lines []string
	lines = append(lines, fetchStatsLines(ring)...)
	lines = append(lines, "")
	lines = append(lines, triggerLines(events)...)
	lines = append(lines, "")
	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	start := len(events) - debugRecentEvents
	if start < 0 {
		start = 0
	}
	for _, e := range events[start:] {
		lines = append(lines, eventLine(e))
	}

	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := min(76, width-4)
	panelWidth = max(panelWidth, 20)

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

func fetchStatsLines(ring *otel.RingBuffer) []string {
	stats := ring.Stats()
	return []string{
		DebugHeaderStyle.Render("Fetch Stats"),
		fmt.Sprintf("  Fetches:    %d complete, %d errors, %d attempts",
			stats[otel.KindFetchComplete], stats[otel.KindFetchError], stats[otel.KindFetchAttempt]),
		fmt.Sprintf("  Polls:      %d triggered, %d skipped in flight",
			stats[otel.KindPollTrigger], stats[otel.KindPollSkip]),
		fmt.Sprintf("  Prefs:      %d loaded, %d saved, %d errors",
			stats[otel.KindPrefLoad], stats[otel.KindPrefSave], stats[otel.KindPrefError]),
		fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()),
	}
}

// triggerLines counts poll.trigger events per reason and shows how many
// races the last completed fetch left visible.
func triggerLines(events []otel.Event) []string {
	byReason := make(map[string]int, len(triggerReasons))
	lastVisible := -1
	for _, e := range events {
		switch e.Kind {
		case otel.KindPollTrigger:
			byReason[e.Reason]++
		case otel.KindFetchComplete:
			lastVisible = e.Visible
		}
	}

	parts := make([]string, 0, len(triggerReasons))
	for _, r := range triggerReasons {
		parts = append(parts, fmt.Sprintf("%s=%d", r, byReason[r]))
	}

	last := "none yet"
	if lastVisible >= 0 {
		last = fmt.Sprintf("%d visible", lastVisible)
	}
	return []string{
		DebugHeaderStyle.Render("Poll Triggers"),
		"  " + strings.Join(parts, "  "),
		"  Last fetch: " + last,
	}
}

func eventLine(e otel.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %6s  %-22s", formatAge(time.Since(e.Time)), e.Kind)
	if e.Msg != "" {
		b.WriteString("  " + truncateRunes(e.Msg, 40))
	}
	if e.Err != "" {
		b.WriteString("  ERR:" + truncateRunes(e.Err, 30))
	}
	if e.Reason != "" {
		b.WriteString("  (" + e.Reason + ")")
	}
	if e.Count > 0 {
		fmt.Fprintf(&b, "  n=%d", e.Count)
	}
	return b.String()
}

// formatAge formats an event's age compactly. Negative ages (clock skew)
// show as "0ms".
func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "0ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
