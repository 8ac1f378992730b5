// Package filter provides pure filter functions for races.
// All functions are simple: []Race in, []Race out. No side effects, and the
// input slice is never modified.
package filter

import (
	"sort"

	"github.com/abelbrown/nexttogo/internal/clock"
	"github.com/abelbrown/nexttogo/internal/race"
)

// MaxVisible is the number of races the dashboard shows.
const MaxVisible = 5

// ByCategory keeps only races in the given category.
func ByCategory(races []race.Race, category race.Category) []race.Race {
	if len(races) == 0 {
		return []race.Race{}
	}

	result := make([]race.Race, 0, len(races))
	for _, r := range races {
		if r.CategoryID == category {
			result = append(result, r)
		}
	}
	return result
}

// Unexpired removes races whose grace window has passed at now.
func Unexpired(races []race.Race, now int64) []race.Race {
	if len(races) == 0 {
		return []race.Race{}
	}

	result := make([]race.Race, 0, len(races))
	for _, r := range races {
		if !clock.IsExpired(r.AdvertisedStart, now) {
			result = append(result, r)
		}
	}
	return result
}

// SortByStart returns a copy ordered by advertised start, earliest first.
// Equal start times are ordered by ID so the result does not depend on the
// order the feed returned them in.
func SortByStart(races []race.Race) []race.Race {
	result := make([]race.Race, len(races))
	copy(result, races)

	sort.Slice(result, func(i, j int) bool {
		if result[i].AdvertisedStart != result[j].AdvertisedStart {
			return result[i].AdvertisedStart < result[j].AdvertisedStart
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Limit caps the slice at n entries.
func Limit(races []race.Race, n int) []race.Race {
	if n < 0 {
		n = 0
	}
	if len(races) <= n {
		return races
	}
	return races[:n]
}

// NextToGo derives the visible list: races in category that have not
// expired at now, soonest first, at most MaxVisible of them.
func NextToGo(races []race.Race, category race.Category, now int64) []race.Race {
	visible := ByCategory(races, category)
	visible = Unexpired(visible, now)
	visible = SortByStart(visible)
	return Limit(visible, MaxVisible)
}
