package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abelbrown/nexttogo/internal/clock"
	"github.com/abelbrown/nexttogo/internal/fetch"
	"github.com/abelbrown/nexttogo/internal/filter"
	"github.com/abelbrown/nexttogo/internal/race"
	"github.com/abelbrown/nexttogo/internal/state"
	"github.com/abelbrown/nexttogo/internal/store"
)

// fixedCategory is a read-only PreferenceStore pinned to one category, so
// -category never overwrites the stored preference.
type fixedCategory race.Category

func (f fixedCategory) Preference(key string) (string, bool, error) {
	if key != store.KeySelectedCategory {
		return "", false, nil
	}
	return string(f), true, nil
}

func (fixedCategory) SetPreference(string, string) error { return nil }

func runRaces() {
	fs := flag.NewFlagSet("races", flag.ExitOnError)
	category := fs.String("category", "", "Category id, label or 1-3 (default: stored preference)")
	count := fs.Int("count", 0, "Request exactly this many races instead of escalating")
	all := fs.Bool("all", false, "Print every fetched race, not only the next five")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	fetcher := fetch.NewFetcher(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, cfg.API.RequestsPerSecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.API.TimeoutSeconds*state.MaxAttempts)*time.Second)
	defer cancel()

	// Single raw request
	if *count > 0 {
		races, err := fetcher.NextRaces(ctx, *count)
		if err != nil {
			log.Fatalf("fetch failed: %v", err)
		}
		fmt.Printf("Requested %d, received %d\n\n", *count, len(races))
		printRaces(filter.SortByStart(races), time.Now().Unix())
		return
	}

	var prefs state.PreferenceStore
	if *category != "" {
		c, ok := parseCategoryArg(*category)
		if !ok {
			log.Fatalf("unknown category %q", *category)
		}
		prefs = fixedCategory(c)
	} else {
		st := openDB(cfg)
		defer st.Close()
		prefs = st
	}

	s := state.New(fetcher, prefs, clockwork.NewRealClock(), nil)
	s.FetchEnsuringFive(ctx)

	snap := s.Snapshot()
	if snap.Err != "" {
		log.Fatalf("fetch failed: %s", snap.Err)
	}

	list := snap.NextToGo()
	if *all {
		list = filter.SortByStart(snap.Races)
	}
	fmt.Printf("%s: %d of %d fetched races shown\n\n", snap.Selected.Label(), len(list), len(snap.Races))
	printRaces(list, snap.Now)
}

func printRaces(races []race.Race, now int64) {
	if len(races) == 0 {
		fmt.Println("  (no races)")
		return
	}
	for _, r := range races {
		mark := " "
		if clock.IsExpired(r.AdvertisedStart, now) {
			mark = "x"
		}
		fmt.Printf("%s %-10s %-30s R%-3d %6ds  %s\n",
			mark,
			r.CategoryID.Label(),
			truncate(r.MeetingName, 30),
			r.RaceNumber,
			r.AdvertisedStart-now,
			time.Unix(r.AdvertisedStart, 0).Format("15:04"),
		)
	}
}
