package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/abelbrown/nexttogo/internal/race"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/nextraces.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func TestNextRacesRequestAndMapping(t *testing.T) {
	fixture := loadFixture(t)

	var gotMethod, gotCount, gotPath, gotQuery, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotMethod = r.URL.Query().Get("method")
		gotCount = r.URL.Query().Get("count")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write(fixture)
	}))
	defer server.Close()

	f := NewFetcher(server.URL+"/rest/v1/racing/", 5*time.Second, 0)
	races, err := f.NextRaces(context.Background(), 10)
	if err != nil {
		t.Fatalf("NextRaces failed: %v", err)
	}

	if gotPath != "/rest/v1/racing/" {
		t.Errorf("path = %q", gotPath)
	}
	if gotMethod != "nextraces" {
		t.Errorf("method = %q, want nextraces", gotMethod)
	}
	if gotCount != "10" {
		t.Errorf("count = %q, want 10", gotCount)
	}
	if gotQuery != "method=nextraces&count=10" {
		t.Errorf("query = %q, want method before count", gotQuery)
	}
	if gotUA == "" {
		t.Error("expected a User-Agent header")
	}

	// 13 ids: one has no summary, race-05 has no seconds, race-09 has a non-numeric start
	wantIDs := []string{"race-01", "race-02", "race-03", "race-04", "race-06", "race-07", "race-08", "race-10", "race-11", "race-12"}
	if len(races) != len(wantIDs) {
		t.Fatalf("expected %d races, got %d", len(wantIDs), len(races))
	}
	for i, id := range wantIDs {
		if races[i].ID != id {
			t.Errorf("races[%d].ID = %q, want %q", i, races[i].ID, id)
		}
	}

	first := races[0]
	if first.MeetingName != "Sandown" {
		t.Errorf("MeetingName = %q", first.MeetingName)
	}
	if first.RaceNumber != 1 {
		t.Errorf("RaceNumber = %d", first.RaceNumber)
	}
	if first.CategoryID != race.Greyhound {
		t.Errorf("CategoryID = %q", first.CategoryID)
	}
	if first.AdvertisedStart != 1735689600 {
		t.Errorf("AdvertisedStart = %d", first.AdvertisedStart)
	}
}

func TestNextRacesKeepsExistingQuery(t *testing.T) {
	var gotKey, gotCount, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotKey = r.URL.Query().Get("key")
		gotCount = r.URL.Query().Get("count")
		w.Write([]byte(`{"data":{"next_to_go_ids":[],"race_summaries":{}}}`))
	}))
	defer server.Close()

	f := NewFetcher(server.URL+"/?key=abc", 5*time.Second, 0)
	races, err := f.NextRaces(context.Background(), 30)
	if err != nil {
		t.Fatalf("NextRaces failed: %v", err)
	}
	if len(races) != 0 {
		t.Errorf("expected no races, got %d", len(races))
	}
	if gotKey != "abc" || gotCount != "30" {
		t.Errorf("query lost: key=%q count=%q", gotKey, gotCount)
	}
	if gotQuery != "key=abc&method=nextraces&count=30" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestNextRacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewFetcher(server.URL, 5*time.Second, 0)
	_, err := f.NextRaces(context.Background(), 10)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if err.Error() != "HTTP 503" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestNextRacesInvalidShape(t *testing.T) {
	bodies := []string{
		`{"not":"expected"}`,
		`{"data":{"race_summaries":{}}}`,
		`{"data":{"next_to_go_ids":[]}}`,
		`{"data":{"next_to_go_ids":null,"race_summaries":{}}}`,
		`[]`,
		`{"data":[]}`,
		`{"data":{"next_to_go_ids":"a","race_summaries":{}}}`,
		`{"data":{"next_to_go_ids":[],"race_summaries":[]}}`,
	}

	for _, body := range bodies {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		f := NewFetcher(server.URL, 5*time.Second, 0)
		_, err := f.NextRaces(context.Background(), 10)
		server.Close()

		if !errors.Is(err, ErrInvalidShape) {
			t.Errorf("body %s: expected ErrInvalidShape, got %v", body, err)
		}
	}
}

func TestNextRacesInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, 5*time.Second, 0)
	_, err := f.NextRaces(context.Background(), 10)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if errors.Is(err, ErrInvalidShape) {
		t.Error("invalid JSON should not be reported as a shape error")
	}
}

func TestNextRacesTransportError(t *testing.T) {
	f := NewFetcher("http://localhost:99999/nonexistent", time.Second, 0)
	_, err := f.NextRaces(context.Background(), 10)
	if err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestNextRacesCancelledContext(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(server.URL, time.Second, 0)
	_, err := f.NextRaces(ctx, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("no request should be sent on a cancelled context")
	}
}

func TestDecodeStartSeconds(t *testing.T) {
	body := `{"data":{
		"next_to_go_ids":["a","b","c","d","e","f"],
		"race_summaries":{
			"a":{"race_id":"a","category_id":"x","advertised_start":{"seconds":100}},
			"b":{"race_id":"b","category_id":"x","advertised_start":{"seconds":"200"}},
			"c":{"race_id":"c","category_id":"x","advertised_start":{"seconds":null}},
			"d":{"race_id":"d","category_id":"x","advertised_start":{"seconds":"NaN"}},
			"e":{"race_id":"e","category_id":"x","race_number":"seven","advertised_start":{"seconds":500}},
			"f":{"race_id":"f","category_id":"x","race_number":"3","meeting_name":7,"advertised_start":{"seconds":600}}
		}}}`

	races, err := Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(races) != 4 {
		t.Fatalf("expected 4 races, got %d: %+v", len(races), races)
	}
	if races[0].ID != "a" || races[0].AdvertisedStart != 100 {
		t.Errorf("unexpected first race %+v", races[0])
	}
	if races[1].ID != "b" || races[1].AdvertisedStart != 200 {
		t.Errorf("unexpected second race %+v", races[1])
	}
	// a bad race_number or meeting_name leaves the field zero but keeps the race
	if races[2].ID != "e" || races[2].RaceNumber != 0 || races[2].AdvertisedStart != 500 {
		t.Errorf("unexpected third race %+v", races[2])
	}
	if races[3].ID != "f" || races[3].RaceNumber != 3 || races[3].MeetingName != "" || races[3].AdvertisedStart != 600 {
		t.Errorf("unexpected fourth race %+v", races[3])
	}
}
