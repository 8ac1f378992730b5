// Package ui provides the Bubble Tea TUI for the next-to-go dashboard.
package ui

import (
	"github.com/abelbrown/nexttogo/internal/race"
	"github.com/abelbrown/nexttogo/internal/state"
)

// StateChanged is sent by the coordinator after every clock tick and every
// completed fetch.
type StateChanged struct {
	Snapshot state.Snapshot
}

// CategorySelected is sent once a category change has been applied.
type CategorySelected struct {
	Category race.Category
	Snapshot state.Snapshot
	Err      error
}
