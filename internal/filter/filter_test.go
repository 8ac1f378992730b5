package filter

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/abelbrown/nexttogo/internal/clock"
	"github.com/abelbrown/nexttogo/internal/race"
)

func ids(races []race.Race) []string {
	out := make([]string, len(races))
	for i, r := range races {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestByCategory(t *testing.T) {
	races := []race.Race{
		{ID: "g1", CategoryID: race.Greyhound},
		{ID: "h1", CategoryID: race.Horse},
		{ID: "h2", CategoryID: race.Horse},
		{ID: "n1", CategoryID: race.Harness},
	}

	got := ids(ByCategory(races, race.Horse))
	if !equalIDs(got, []string{"h1", "h2"}) {
		t.Errorf("ByCategory = %v", got)
	}
}

func TestByCategoryEmpty(t *testing.T) {
	result := ByCategory(nil, race.Horse)
	if result == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(result) != 0 {
		t.Errorf("expected 0 races, got %d", len(result))
	}
}

func TestUnexpired(t *testing.T) {
	now := int64(10_000)
	races := []race.Race{
		{ID: "future", AdvertisedStart: now + 300},
		{ID: "just-started", AdvertisedStart: now},
		{ID: "in-grace", AdvertisedStart: now - clock.ExpiryGrace},
		{ID: "expired", AdvertisedStart: now - clock.ExpiryGrace - 1},
	}

	got := ids(Unexpired(races, now))
	if !equalIDs(got, []string{"future", "just-started", "in-grace"}) {
		t.Errorf("Unexpired = %v", got)
	}
}

func TestSortByStartTieBreaksOnID(t *testing.T) {
	races := []race.Race{
		{ID: "c", AdvertisedStart: 20},
		{ID: "b", AdvertisedStart: 20},
		{ID: "z", AdvertisedStart: 10},
		{ID: "a", AdvertisedStart: 30},
	}

	got := ids(SortByStart(races))
	if !equalIDs(got, []string{"z", "b", "c", "a"}) {
		t.Errorf("SortByStart = %v", got)
	}

	// Input is untouched
	if races[0].ID != "c" {
		t.Error("SortByStart modified its input")
	}
}

func TestLimit(t *testing.T) {
	races := make([]race.Race, 7)
	if len(Limit(races, 5)) != 5 {
		t.Error("expected 5")
	}
	if len(Limit(races[:3], 5)) != 3 {
		t.Error("expected 3")
	}
	if len(Limit(races, -1)) != 0 {
		t.Error("negative limit should yield nothing")
	}
}

func TestNextToGo(t *testing.T) {
	now := int64(1000)
	races := []race.Race{
		{ID: "x1", CategoryID: race.Greyhound, AdvertisedStart: now + 10},
		{ID: "h1", CategoryID: race.Horse, AdvertisedStart: now - 100}, // expired
		{ID: "h2", CategoryID: race.Horse, AdvertisedStart: now + 20},
		{ID: "h3", CategoryID: race.Horse, AdvertisedStart: now + 20},
		{ID: "h4", CategoryID: race.Horse, AdvertisedStart: now + 40},
		{ID: "h5", CategoryID: race.Horse, AdvertisedStart: now + 50},
		{ID: "h6", CategoryID: race.Horse, AdvertisedStart: now + 60},
		{ID: "h7", CategoryID: race.Horse, AdvertisedStart: now + 70},
	}

	got := ids(NextToGo(races, race.Horse, now))
	want := []string{"h2", "h3", "h4", "h5", "h6"}
	if !equalIDs(got, want) {
		t.Errorf("NextToGo = %v, want %v", got, want)
	}
}

func TestNextToGoIsOrderIndependent(t *testing.T) {
	now := int64(50_000)
	races := make([]race.Race, 0, 40)
	for i := 0; i < 40; i++ {
		races = append(races, race.Race{
			ID:              fmt.Sprintf("r%02d", i),
			CategoryID:      race.Categories[i%len(race.Categories)],
			AdvertisedStart: now - 120 + int64(i%8)*30,
		})
	}

	want := ids(NextToGo(races, race.Harness, now))

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		shuffled := make([]race.Race, len(races))
		copy(shuffled, races)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := NextToGo(shuffled, race.Harness, now)
		if !equalIDs(ids(got), want) {
			t.Fatalf("round %d: got %v, want %v", round, ids(got), want)
		}
		if len(got) > MaxVisible {
			t.Fatalf("round %d: %d races visible", round, len(got))
		}
		for _, r := range got {
			if r.CategoryID != race.Harness {
				t.Fatalf("round %d: wrong category %s", round, r.ID)
			}
			if clock.IsExpired(r.AdvertisedStart, now) {
				t.Fatalf("round %d: expired race %s visible", round, r.ID)
			}
		}
	}
}
