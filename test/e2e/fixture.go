package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/abelbrown/nexttogo/internal/race"
	"github.com/abelbrown/nexttogo/internal/store"
)

// seedPreference stores the selected category in dataDir/nexttogo.db.
func seedPreference(dataDir string, c race.Category) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	st, err := store.Open(filepath.Join(dataDir, "nexttogo.db"))
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SetPreference(store.KeySelectedCategory, string(c))
}

// storedCategory reads the selected category back from dataDir.
func storedCategory(dataDir string) (string, error) {
	st, err := store.Open(filepath.Join(dataDir, "nexttogo.db"))
	if err != nil {
		return "", err
	}
	defer st.Close()
	v, _, err := st.Preference(store.KeySelectedCategory)
	return v, err
}

// fixtureRace is one race served by raceFeed.
type fixtureRace struct {
	ID       string
	Meeting  string
	Number   int
	Category race.Category
	Start    int64
}

// raceFeed is a fake nextraces endpoint. It serves at most count races
// from its list and records every requested count.
type raceFeed struct {
	mu     sync.Mutex
	races  []fixtureRace
	counts []int
}

func newRaceFeed(t *testing.T, races []fixtureRace) (*raceFeed, *httptest.Server) {
	t.Helper()
	f := &raceFeed{races: races}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *raceFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("method") != "nextraces" {
		http.Error(w, "unknown method", http.StatusBadRequest)
		return
	}
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil || count <= 0 {
		http.Error(w, "bad count", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.counts = append(f.counts, count)
	races := f.races
	if len(races) > count {
		races = races[:count]
	}
	f.mu.Unlock()

	ids := make([]string, 0, len(races))
	summaries := make(map[string]any, len(races))
	for _, fr := range races {
		ids = append(ids, fr.ID)
		summaries[fr.ID] = map[string]any{
			"race_id":          fr.ID,
			"race_name":        fmt.Sprintf("Race %d", fr.Number),
			"race_number":      fr.Number,
			"meeting_name":     fr.Meeting,
			"category_id":      string(fr.Category),
			"advertised_start": map[string]any{"seconds": fr.Start},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": 200,
		"data": map[string]any{
			"next_to_go_ids": ids,
			"race_summaries": summaries,
		},
	})
}

func (f *raceFeed) requested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.counts))
	copy(out, f.counts)
	return out
}

// mixedRaces returns n races cycling Greyhound, Harness, Horse, starting at
// base and one minute apart. Meeting names carry the category label.
func mixedRaces(n int, base int64) []fixtureRace {
	out := make([]fixtureRace, n)
	for i := range out {
		c := race.Categories[i%len(race.Categories)]
		out[i] = fixtureRace{
			ID:       fmt.Sprintf("race-%02d", i+1),
			Meeting:  fmt.Sprintf("%s Park %d", c.Label(), i+1),
			Number:   i%12 + 1,
			Category: c,
			Start:    base + int64(i)*60,
		}
	}
	return out
}
