// Package fandango ingests per-day showtime payloads from the
// theaterMovieShowtimes JSON endpoint and reduces them to the schedule
// data model.
package fandango

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/movie-times/internal/model"
	"github.com/iliyamo/movie-times/internal/schedule"
)

type dayPayload struct {
	ViewModel *viewModel `json:"viewModel"`
}

type viewModel struct {
	Date   string      `json:"date"`
	Movies []movieInfo `json:"movies"`
}

type movieInfo struct {
	Title    string     `json:"title"`
	Runtime  rawRuntime `json:"runtime"`
	Variants []variant  `json:"variants"`
}

type variant struct {
	FilmFormatHeader string         `json:"filmFormatHeader"`
	AmenityGroups    []amenityGroup `json:"amenityGroups"`
}

type amenityGroup struct {
	Amenities []amenity  `json:"amenities"`
	IsDolby   bool       `json:"isDolby"`
	Showtimes []showtime `json:"showtimes"`
}

type amenity struct {
	Name string `json:"name"`
}

type showtime struct {
	Date string `json:"date"`
}

// rawRuntime tolerates both spellings the endpoint uses: a bare minute
// count and a "H hr M min" string.
type rawRuntime string

func (r *rawRuntime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = rawRuntime(s)
		return nil
	}
	*r = rawRuntime(data)
	return nil
}

// BuildDaySchedule decodes one day's payload into a DaySchedule in the
// theater's zone.  It returns nil without error when the payload carries
// no viewModel, which the endpoint sends for days it has no data for.
func BuildDaySchedule(data []byte, loc *time.Location) (*schedule.DaySchedule, error) {
	var payload dayPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: bad showtimes payload: %v", model.ErrDataIntegrity, err)
	}
	if payload.ViewModel == nil {
		return nil, nil
	}

	day, err := time.ParseInLocation("2006-01-02", payload.ViewModel.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: bad payload date %q", model.ErrDataIntegrity, payload.ViewModel.Date)
	}

	sched := schedule.NewDaySchedule(day)
	for _, info := range payload.ViewModel.Movies {
		movie, err := sched.AddRawMovie(StripYearSuffix(info.Title), string(info.Runtime))
		if err != nil {
			return nil, err
		}
		for _, v := range info.Variants {
			for _, group := range v.AmenityGroups {
				attributes := []string{v.FilmFormatHeader}
				switch {
				case len(group.Amenities) > 0:
					for _, a := range group.Amenities {
						attributes = append(attributes, a.Name)
					}
				case group.IsDolby:
					attributes = append(attributes, "dolby cinema @ amc")
				}

				rawTimes := make([]string, 0, len(group.Showtimes))
				for _, st := range group.Showtimes {
					rawTimes = append(rawTimes, st.Date)
				}
				if err := movie.AddRawShowings(attributes, rawTimes, day, loc); err != nil {
					return nil, err
				}
			}
		}
	}
	return sched, nil
}

// StripYearSuffix removes a trailing "(YEAR)" disambiguator from a display
// title.  A non-numeric parenthesized suffix is part of the title and kept.
func StripYearSuffix(title string) string {
	i := strings.LastIndexByte(title, ' ')
	if i < 0 {
		return title
	}
	suffix := title[i+1:]
	if len(suffix) < 3 || suffix[0] != '(' || suffix[len(suffix)-1] != ')' {
		return title
	}
	for _, c := range suffix[1 : len(suffix)-1] {
		if c < '0' || c > '9' {
			return title
		}
	}
	return title[:i]
}
