package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/nexttogo/internal/race"
)

// RenderTabs renders the category selector with the selected category highlighted.
func RenderTabs(selected race.Category, width int) string {
	tabs := make([]string, 0, len(race.Categories))
	for i, c := range race.Categories {
		label := fmt.Sprintf("%d %s", i+1, c.Label())
		if c == selected {
			tabs = append(tabs, ActiveTab.Render(label))
		} else {
			tabs = append(tabs, InactiveTab.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return lipgloss.NewStyle().MaxWidth(width).Render(row)
}

// RenderRaceList renders one line per race with a countdown relative to now
// and the start time in loc.
func RenderRaceList(races []race.Race, now int64, loc *time.Location, width int) string {
	if len(races) == 0 {
		return HelpStyle.Render("No upcoming races. Press 'r' to refresh.")
	}

	lines := make([]string, 0, len(races))
	for _, r := range races {
		lines = append(lines, renderRaceLine(r, now, loc, width))
	}
	return strings.Join(lines, "\n")
}

func renderRaceLine(r race.Race, now int64, loc *time.Location, width int) string {
	badge := RaceNumber.Render(fmt.Sprintf("R%d", r.RaceNumber))
	countdown := renderCountdown(r.AdvertisedStart - now)
	start := StartTimeStyle.Render(formatStartTime(r.AdvertisedStart, loc))

	// meeting name takes whatever room the fixed columns leave
	right := countdown + "  " + start
	room := width - lipgloss.Width(badge) - lipgloss.Width(right) - 4
	if room < 8 {
		room = 8
	}
	meeting := truncateRunes(r.MeetingName, room)
	pad := room - utf8.RuneCountInString(meeting)
	if pad < 0 {
		pad = 0
	}

	return RaceRow.Render(badge + meeting + strings.Repeat(" ", pad) + "  " + right)
}

func renderCountdown(secs int64) string {
	text := fmt.Sprintf("%8s", FormatCountdown(secs))
	switch {
	case secs <= 0:
		return StartedStyle.Render(text)
	case secs < 60:
		return ImminentStyle.Render(text)
	default:
		return CountdownStyle.Render(text)
	}
}

// FormatCountdown formats seconds until start: "45s", "2m 05s", "1h 02m".
// Races that have started show a leading minus.
func FormatCountdown(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%s%ds", sign, secs)
	case secs < 3600:
		return fmt.Sprintf("%s%dm %02ds", sign, secs/60, secs%60)
	default:
		return fmt.Sprintf("%s%dh %02dm", sign, secs/3600, (secs%3600)/60)
	}
}

// formatStartTime renders an epoch second as "HH:MM ZONE" in loc (time.Local when nil).
func formatStartTime(epoch int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(epoch, 0).In(loc).Format("15:04 MST")
}

// truncateRunes shortens s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

// RenderStatusBar renders the bottom status bar: fetch status on the left,
// key hints on the right.
func RenderStatusBar(status string, hints string, width int) string {
	leftWidth := lipgloss.Width(status)
	rightWidth := lipgloss.Width(hints)
	padding := width - leftWidth - rightWidth - 4
	if padding < 1 {
		padding = 1
	}

	bar := status + strings.Repeat(" ", padding) + hints
	return StatusBar.Width(width).Render(bar)
}
