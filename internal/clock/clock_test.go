package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestNowFloorsToSeconds(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Unix(1735689600, 900_000_000))

	if got := Now(fc); got != 1735689600 {
		t.Errorf("Now = %d, want 1735689600", got)
	}

	fc.Advance(150 * time.Millisecond)
	if got := Now(fc); got != 1735689601 {
		t.Errorf("Now after advance = %d, want 1735689601", got)
	}
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name  string
		start int64
		now   int64
		want  bool
	}{
		{"before start", 1000, 900, false},
		{"at start", 1000, 1000, false},
		{"inside grace", 1000, 1059, false},
		{"grace boundary", 1000, 1060, false},
		{"one past grace", 1000, 1061, true},
		{"long gone", 1000, 5000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(tt.start, tt.now); got != tt.want {
				t.Errorf("IsExpired(%d, %d) = %v, want %v", tt.start, tt.now, got, tt.want)
			}
		})
	}
}

func TestThreshold(t *testing.T) {
	if got := Threshold(1000); got != 1060 {
		t.Errorf("Threshold(1000) = %d, want 1060", got)
	}
	if IsExpired(1000, Threshold(1000)) {
		t.Error("race should not be expired exactly at its threshold")
	}
}
