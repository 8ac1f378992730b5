// Package otel provides structured observability for nexttogo.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Fetch events
	KindFetchStart    EventKind = "fetch.start"
	KindFetchAttempt  EventKind = "fetch.attempt"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Coordinator events
	KindPollTrigger EventKind = "poll.trigger"
	KindPollSkip    EventKind = "poll.skip"

	// Preference events
	KindPrefLoad  EventKind = "pref.load"
	KindPrefSave  EventKind = "pref.save"
	KindPrefError EventKind = "pref.error"

	// UI events
	KindCategorySelect EventKind = "ui.category"
	KindKeyPress       EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events (only emitted when tracing is enabled)
	KindTick EventKind = "trace.tick"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "coord", "state", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`      // requested or returned race count
	Attempt   int            `json:"attempt,omitempty"`    // escalation attempt, 1-based
	Visible   int            `json:"visible,omitempty"`
	Category  string         `json:"category,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
