package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/media"
	"marquee/internal/services"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New("test-key", server.URL, "en-US",
		WithHTTPClient(server.Client()),
		WithRateLimit(0),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, server
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("   ", "https://example.test", "")
	if err == nil {
		t.Fatal("expected an error for an empty api key")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestSearchByTitlePrefersExactMatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "Heat" {
			t.Errorf("query = %q, want Heat", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q", got)
		}
		json.NewEncoder(w).Encode(searchPayload{Results: []searchResult{
			{ID: 1, Title: "Heat Wave", Popularity: 99, ReleaseDate: "2022-07-01"},
			{ID: 2, Title: "Heat", Popularity: 5, ReleaseDate: "1995-12-15"},
		}})
	}))

	candidate, err := client.SearchByTitle(context.Background(), "Heat", SearchOptions{Kind: media.KindMovie})
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if candidate == nil {
		t.Fatal("expected a candidate")
	}
	if candidate.ID != 2 {
		t.Errorf("selected id %d, want the exact-title match 2 over the more popular substring match", candidate.ID)
	}
	if candidate.Year != 1995 {
		t.Errorf("year = %d, want 1995", candidate.Year)
	}
}

func TestSearchByTitleYearForwarded(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("primary_release_year"); got != "2003" {
			t.Errorf("primary_release_year = %q, want 2003", got)
		}
		json.NewEncoder(w).Encode(searchPayload{Results: []searchResult{
			{ID: 3, Title: "Oldboy", ReleaseDate: "2003-11-21"},
		}})
	}))

	candidate, err := client.SearchByTitle(context.Background(), "Oldboy", SearchOptions{Year: 2003, Kind: media.KindMovie})
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if candidate == nil || candidate.ID != 3 {
		t.Fatalf("unexpected candidate %+v", candidate)
	}
}

func TestSearchByTitleNoResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchPayload{})
	}))

	candidate, err := client.SearchByTitle(context.Background(), "Nonexistent", SearchOptions{Kind: media.KindMovie})
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if candidate != nil {
		t.Errorf("expected nil candidate, got %+v", candidate)
	}
}

func TestSearchByTitleEmptyTitle(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty title")
	}))

	_, err := client.SearchByTitle(context.Background(), "  ", SearchOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestSearchCachesResponses(t *testing.T) {
	var calls atomic.Int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(searchPayload{Results: []searchResult{
			{ID: 7, Title: "Arrival", ReleaseDate: "2016-11-11"},
		}})
	}))

	for i := 0; i < 3; i++ {
		if _, err := client.SearchByTitle(context.Background(), "Arrival", SearchOptions{Kind: media.KindMovie}); err != nil {
			t.Fatalf("SearchByTitle: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 upstream call for repeated identical searches, got %d", got)
	}

	// A different year is a different cache entry.
	if _, err := client.SearchByTitle(context.Background(), "Arrival", SearchOptions{Year: 2016, Kind: media.KindMovie}); err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected a second upstream call for new options, got %d", got)
	}
}

func TestRejectedCredentialsAreFatal(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := client.SearchByTitle(context.Background(), "Heat", SearchOptions{Kind: media.KindMovie})
		if !errors.Is(err, services.ErrConfiguration) {
			t.Errorf("status %d: expected a configuration error, got %v", status, err)
		}
		if !services.IsFatal(err) {
			t.Errorf("status %d: credential rejection must be fatal", status)
		}
	}
}

func TestServerErrorsAreTransient(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.SearchByTitle(context.Background(), "Heat", SearchOptions{Kind: media.KindMovie})
	if !errors.Is(err, services.ErrTransient) {
		t.Errorf("expected a transient error, got %v", err)
	}
	if services.IsFatal(err) {
		t.Error("server errors must not abort the pipeline")
	}
}

func TestFetchDetailsMapsRecord(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/496243" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":                496243,
			"title":             "Parasite",
			"original_title":    "기생충",
			"overview":          "A poor family schemes.",
			"poster_path":       "/poster.jpg",
			"release_date":      "2019-05-30",
			"original_language": "ko",
			"popularity":        88.5,
			"vote_average":      8.5,
			"vote_count":        16000,
			"budget":            11400000,
			"revenue":           257591776,
			"genres": []map[string]any{
				{"id": 35, "name": "Comedy"},
				{"id": 53, "name": "Thriller"},
			},
		})
	}))

	record, err := client.FetchDetailsByID(context.Background(), 496243, media.KindMovie)
	if err != nil {
		t.Fatalf("FetchDetailsByID: %v", err)
	}
	if record.ID != 496243 || record.Title != "Parasite" {
		t.Errorf("unexpected record identity %+v", record)
	}
	if record.ReleaseYear != 2019 {
		t.Errorf("release year = %d, want 2019", record.ReleaseYear)
	}
	if record.OriginalLanguage != "ko" {
		t.Errorf("language = %q, want ko", record.OriginalLanguage)
	}
	if len(record.Genres) != 2 || record.Genres[0] != "Comedy" {
		t.Errorf("genres = %v", record.Genres)
	}
	if record.BoxOffice != 257591776 || record.Budget != 11400000 {
		t.Errorf("financials = budget %d, box office %d", record.Budget, record.BoxOffice)
	}
	if record.Kind != media.KindMovie {
		t.Errorf("kind = %q, want movie", record.Kind)
	}
}

func TestFetchDetailsSeriesPath(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/70523" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":             70523,
			"name":           "Dark",
			"original_name":  "Dark",
			"first_air_date": "2017-12-01",
		})
	}))

	record, err := client.FetchDetailsByID(context.Background(), 70523, media.KindSeries)
	if err != nil {
		t.Fatalf("FetchDetailsByID: %v", err)
	}
	if record.Title != "Dark" || record.Kind != media.KindSeries {
		t.Errorf("unexpected record %+v", record)
	}
	if record.ReleaseYear != 2017 {
		t.Errorf("release year = %d, want 2017", record.ReleaseYear)
	}
}

func TestFetchDetailsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchDetailsByID(context.Background(), 999, media.KindMovie)
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDetailsFetchSpacedAfterSearch(t *testing.T) {
	const spacing = 60 * time.Millisecond

	var requestTimes []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestTimes = append(requestTimes, time.Now())
		switch r.URL.Path {
		case "/search/movie":
			json.NewEncoder(w).Encode(searchPayload{Results: []searchResult{
				{ID: 7, Title: "Heat", ReleaseDate: "1995-12-15"},
			}})
		case "/movie/7":
			json.NewEncoder(w).Encode(detailsPayload{Title: "Heat"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	client, err := New("test-key", server.URL, "en-US",
		WithHTTPClient(server.Client()),
		WithRateLimit(spacing),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	client.lastLookup = time.Now().Add(-spacing)

	candidate, err := client.SearchByTitle(context.Background(), "Heat", SearchOptions{Kind: media.KindMovie})
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if _, err := client.FetchDetailsByID(context.Background(), candidate.ID, media.KindMovie); err != nil {
		t.Fatalf("FetchDetailsByID: %v", err)
	}

	if len(requestTimes) != 2 {
		t.Fatalf("upstream saw %d requests, want 2", len(requestTimes))
	}
	if gap := requestTimes[1].Sub(requestTimes[0]); gap < spacing {
		t.Errorf("dependent calls only %v apart, want at least %v", gap, spacing)
	}
}

func TestSearchRateLimitHonorsCancellation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchPayload{Results: []searchResult{{ID: 1, Title: "Heat"}}})
	}))
	client.rateLimit = time.Hour
	client.lastLookup = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.SearchByTitle(ctx, "Heat", SearchOptions{Kind: media.KindMovie})
	if !errors.Is(err, services.ErrTimeout) {
		t.Errorf("expected a timeout error while rate limited, got %v", err)
	}
}
