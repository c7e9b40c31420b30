package fandango

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/iliyamo/movie-times/internal/schedule"
	"github.com/iliyamo/movie-times/internal/theater"
)

const defaultBaseURL = "https://www.fandango.com"

// Client fetches per-day showtime payloads.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a client against the production endpoint.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBase overrides the endpoint base URL; tests point it at a
// local server.
func NewClientWithBase(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// FetchDay retrieves the raw showtimes payload for one theater and day.
func (c *Client) FetchDay(ctx context.Context, th theater.Theater, day time.Time) ([]byte, error) {
	date := day.Format("2006-01-02")
	url := fmt.Sprintf("%s/napi/theaterMovieShowtimes/%s?startDate=%s", c.baseURL, th.Code, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// The endpoint rejects requests that don't look like they came from
	// the theater page.
	req.Header.Set("Referer", fmt.Sprintf("%s/%s/theater-page?format=all&date=%s", c.baseURL, th.Slug, date))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch showtimes for %s on %s: %w", th.Name, date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch showtimes for %s on %s: unexpected status %d", th.Name, date, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// LoadSchedulesByDay fetches, decodes and filters one DaySchedule per day
// of the inclusive [first, last] window.  Days the endpoint has no data
// for are skipped.
func (c *Client) LoadSchedulesByDay(ctx context.Context, th theater.Theater, first, last time.Time, f schedule.Filter) ([]*schedule.DaySchedule, error) {
	loc, err := th.Location()
	if err != nil {
		return nil, err
	}

	var days []*schedule.DaySchedule
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		payload, err := c.FetchDay(ctx, th, day)
		if err != nil {
			return nil, err
		}
		sched, err := BuildDaySchedule(payload, loc)
		if err != nil {
			return nil, err
		}
		if sched == nil {
			continue
		}
		days = append(days, sched.Filter(f))
	}
	return days, nil
}

// LoadScheduleFile decodes a single saved payload, for offline use.
func LoadScheduleFile(path string, th theater.Theater, f schedule.Filter) ([]*schedule.DaySchedule, error) {
	loc, err := th.Location()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sched, err := BuildDaySchedule(data, loc)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, nil
	}
	return []*schedule.DaySchedule{sched.Filter(f)}, nil
}
