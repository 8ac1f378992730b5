// Package fetch retrieves upcoming races from the next-to-go racing API.
//
// The API returns a ranked list of race ids plus a map of race summaries
// keyed by id. Fetch converts that into an ordered []race.Race, dropping
// individual entries it cannot make sense of rather than failing the
// whole response.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/nexttogo/internal/race"
)

// ErrInvalidShape is returned when the response is missing the id list or
// the summary map.
var ErrInvalidShape = errors.New("invalid API shape: missing keys")

// HTTPError reports a non-success status from the API.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// userAgent identifies the dashboard to the API.
const userAgent = "nexttogo/0.1 (+https://github.com/abelbrown/nexttogo)"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Fetcher retrieves races from the API.
type Fetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher for baseURL with the given HTTP client timeout.
// Requests are paced to at most perSecond per second; a non-positive value
// disables pacing.
func NewFetcher(baseURL string, timeout time.Duration, perSecond float64) *Fetcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Fetcher{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// apiResponse is the envelope returned by method=nextraces. Summaries stay
// raw so one malformed entry cannot fail the whole response.
type apiResponse struct {
	Data struct {
		NextToGoIDs   *[]string                  `json:"next_to_go_ids"`
		RaceSummaries map[string]json.RawMessage `json:"race_summaries"`
	} `json:"data"`
}

type startRef struct {
	Seconds json.RawMessage `json:"seconds"`
}

// NextRaces asks the API for about count races in next-to-go order.
// The API decides the final length; callers must not rely on it being exact.
func (f *Fetcher) NextRaces(ctx context.Context, count int) ([]race.Race, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	reqURL, err := f.requestURL(count)
	if err != nil {
		return nil, err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch races: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return Decode(body)
}

// requestURL appends the nextraces query to the configured base URL,
// keeping any query the base URL already carries.
func (f *Fetcher) requestURL(count int) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", f.baseURL, err)
	}
	query := "method=nextraces&count=" + strconv.Itoa(count)
	if u.RawQuery != "" {
		query = u.RawQuery + "&" + query
	}
	u.RawQuery = query
	return u.String(), nil
}

// Decode converts a raw nextraces response body into races, in the order
// given by next_to_go_ids. Ids without a usable summary are skipped.
// Well-formed JSON of the wrong structure is reported as ErrInvalidShape.
func Decode(body []byte) ([]race.Race, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrInvalidShape
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Data.NextToGoIDs == nil || resp.Data.RaceSummaries == nil {
		return nil, ErrInvalidShape
	}

	ids := *resp.Data.NextToGoIDs
	races := make([]race.Race, 0, len(ids))
	for _, id := range ids {
		raw, ok := resp.Data.RaceSummaries[id]
		if !ok {
			continue
		}
		r, ok := convertSummary(raw)
		if !ok {
			continue
		}
		races = append(races, r)
	}
	return races, nil
}

// convertSummary maps one summary. It reports false only when the entry is
// not an object or has no finite start time; other fields are read
// best-effort and left zero when they have the wrong type.
func convertSummary(raw json.RawMessage) (race.Race, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return race.Race{}, false
	}

	var ref startRef
	if err := json.Unmarshal(fields["advertised_start"], &ref); err != nil {
		return race.Race{}, false
	}
	start, ok := parseSeconds(ref.Seconds)
	if !ok {
		return race.Race{}, false
	}

	r := race.Race{AdvertisedStart: start}
	_ = json.Unmarshal(fields["race_id"], &r.ID)
	_ = json.Unmarshal(fields["meeting_name"], &r.MeetingName)
	_ = json.Unmarshal(fields["category_id"], &r.CategoryID)
	if n, ok := parseSeconds(fields["race_number"]); ok {
		r.RaceNumber = int(n)
	}
	return r, true
}

// parseSeconds accepts a JSON number or numeric string, floored to an
// integer. It is also used for race_number.
func parseSeconds(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int64(math.Floor(v)), true
}
