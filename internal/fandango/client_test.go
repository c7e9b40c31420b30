package fandango

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/movie-times/internal/schedule"
	"github.com/iliyamo/movie-times/internal/theater"
)

func testTheater() theater.Theater {
	return theater.Theater{
		Name: "Test Cinema",
		Code: "abcde",
		Slug: "test-cinema-abcde",
		TZ:   "UTC",
	}
}

func TestLoadSchedulesByDay(t *testing.T) {
	var gotPaths []string
	var gotReferers []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path+"?"+r.URL.RawQuery)
		gotReferers = append(gotReferers, r.Header.Get("Referer"))

		date := r.URL.Query().Get("startDate")
		if date == "2025-07-05" {
			// A day the source has nothing for.
			fmt.Fprint(w, `{"viewModel": null}`)
			return
		}
		fmt.Fprintf(w, `{"viewModel": {"date": %q, "movies": [
			{"title": "Dune", "runtime": "2 hr 5 min", "variants": [
				{"filmFormatHeader": "Standard Format", "amenityGroups": [
					{"amenities": [], "showtimes": [{"date": "7:30p"}]}
				]}
			]}
		]}}`, date)
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL)
	first := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 0, 2)

	days, err := client.LoadSchedulesByDay(context.Background(), testTheater(), first, last, schedule.EmptyFilter())
	if err != nil {
		t.Fatalf("LoadSchedulesByDay error: %v", err)
	}
	// Three days requested, the empty middle one skipped.
	if len(gotPaths) != 3 {
		t.Fatalf("requests = %d, want 3", len(gotPaths))
	}
	if len(days) != 2 {
		t.Fatalf("day schedules = %d, want 2", len(days))
	}

	if want := "/napi/theaterMovieShowtimes/abcde?startDate=2025-07-04"; gotPaths[0] != want {
		t.Errorf("first request = %q, want %q", gotPaths[0], want)
	}
	if !strings.Contains(gotReferers[0], "/test-cinema-abcde/theater-page") {
		t.Errorf("referer = %q, want the theater page", gotReferers[0])
	}

	if days[0].Len() != 1 || days[0].Movies[0].Name != "Dune" {
		t.Errorf("first day = %+v", days[0])
	}
}

func TestFetchDayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClientWithBase(srv.URL)
	day := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	if _, err := client.FetchDay(context.Background(), testTheater(), day); err == nil {
		t.Error("FetchDay accepted a 403 response")
	}
}
