// Package clock provides the wall-clock helpers used to decide race expiry.
package clock

import "github.com/jonboulle/clockwork"

// ExpiryGrace is how long after its advertised start a race stays visible.
// Results take roughly a minute to settle, so a race is not dropped the
// instant it jumps.
const ExpiryGrace = 60

// Now returns the current time from c as whole epoch seconds.
func Now(c clockwork.Clock) int64 {
	return c.Now().Unix()
}

// IsExpired reports whether a race starting at start has passed its grace window.
func IsExpired(start, now int64) bool {
	return now > start+ExpiryGrace
}

// Threshold returns the epoch second after which a race starting at start expires.
func Threshold(start int64) int64 {
	return start + ExpiryGrace
}
