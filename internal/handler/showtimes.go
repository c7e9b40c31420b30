// Package handler exposes HTTP handlers for the showtime API.  This file
// defines the read side: browsing stored showtimes per theater over a
// date range expressed in the same free-form language the CLI accepts
// ("today", "friday", "next movie week", "december", "7/4-7/6", ...).
package handler

import (
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-times/internal/model"
	"github.com/iliyamo/movie-times/internal/repository"
	"github.com/iliyamo/movie-times/internal/schedule"
	"github.com/iliyamo/movie-times/internal/theater"
)

// movieColors holds (text, background) CSS color pairs assigned to movie
// titles in listing responses.  Titles are sorted and colored in order,
// wrapping around when there are more titles than pairs.
var movieColors = [][2]string{
	{"white", "blue"},
	{"white", "green"},
	{"black", "lime"},
	{"white", "slateblue"},
	{"white", "slategray"},
	{"white", "maroon"},
	{"black", "skyblue"},
	{"white", "crimson"},
	{"white", "magenta"},
	{"black", "orange"},
	{"black", "gold"},
	{"black", "yellow"},
	{"black", "pink"},
	{"black", "coral"},
	{"black", "violet"},
	{"black", "palegreen"},
	{"white", "saddlebrown"},
	{"black", "aquamarine"},
	{"black", "burlywood"},
	{"white", "olive"},
	{"black", "greenyellow"},
	{"black", "rosybrown"},
	{"black", "thistle"},
	{"black", "sandybrown"},
	{"black", "salmon"},
	{"black", "lightgray"},
	{"white", "brown"},
	{"white", "purple"},
}

// DisplayStyle carries the colors a client should use when rendering a
// movie title.
type DisplayStyle struct {
	Text       string `json:"text"`
	Background string `json:"background"`
}

// ShowtimeHandler aggregates the repositories and theater registry
// needed for unauthenticated browsing of stored showtimes.
type ShowtimeHandler struct {
	ShowtimeRepo *repository.ShowtimeRepo
	MetadataRepo *repository.MetadataRepo
	Theaters     *theater.Registry
}

// GetShowtimes returns stored showtimes for one theater over a date
// range.  The range comes from the "date" query parameter, parsed in the
// theater's time zone; it defaults to "movie week".  An optional "title"
// parameter narrows the result to a single movie and skips the display
// palette.  Movies hidden via the metadata API are filtered out.
func (h *ShowtimeHandler) GetShowtimes(c echo.Context) error {
	ctx := c.Request().Context()

	th, ok := h.Theaters.Get(c.Param("theater"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown theater"})
	}
	loc, err := th.Location()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "bad theater time zone"})
	}

	expr := c.QueryParam("date")
	if expr == "" {
		expr = "movie week"
	}
	parser := schedule.NewParser(loc)
	first, last, err := parser.ParseDateRange(expr)
	if err != nil {
		if errors.Is(err, schedule.ErrParse) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	// The parsed range is inclusive of its last day; the store window
	// is half-open.
	last = last.AddDate(0, 0, 1)

	if title := c.QueryParam("title"); title != "" {
		rows, err := h.ShowtimeRepo.LoadShowtimesByTitle(ctx, th.Name, title, first, last)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"showtimes": rows})
	}

	rows, err := h.ShowtimeRepo.LoadShowtimes(ctx, th.Name, first, last)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	visible, err := h.MetadataRepo.LoadVisibility(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	rows = filterHidden(rows, visible)

	return c.JSON(http.StatusOK, echo.Map{
		"showtimes": rows,
		"display":   displayStyles(rows),
	})
}

// GetTheaters lists the known theaters along with the time each was last
// refreshed by the collector.  Theaters never refreshed report a zero
// timestamp.
func (h *ShowtimeHandler) GetTheaters(c echo.Context) error {
	ctx := c.Request().Context()

	updated, err := h.ShowtimeRepo.TheatersLastUpdate(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type theaterInfo struct {
		Name       string `json:"name"`
		LastUpdate string `json:"last_update,omitempty"`
	}
	out := make([]theaterInfo, 0)
	for _, name := range h.Theaters.Names() {
		info := theaterInfo{Name: name}
		if t, ok := updated[name]; ok {
			info.LastUpdate = t.Format("2006-01-02 15:04:05")
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// filterHidden drops rows whose title has been hidden.  Titles absent
// from the visibility map are visible.
func filterHidden(rows []model.ShowtimeRow, visible map[string]bool) []model.ShowtimeRow {
	out := make([]model.ShowtimeRow, 0, len(rows))
	for _, row := range rows {
		if vis, ok := visible[row.Title]; ok && !vis {
			continue
		}
		out = append(out, row)
	}
	return out
}

// displayStyles assigns a color pair to each distinct title, in sorted
// title order, wrapping around the palette.
func displayStyles(rows []model.ShowtimeRow) map[string]DisplayStyle {
	seen := map[string]bool{}
	titles := make([]string, 0)
	for _, row := range rows {
		if !seen[row.Title] {
			seen[row.Title] = true
			titles = append(titles, row.Title)
		}
	}
	sort.Strings(titles)

	out := make(map[string]DisplayStyle, len(titles))
	for i, title := range titles {
		pair := movieColors[i%len(movieColors)]
		out[title] = DisplayStyle{Text: pair[0], Background: pair[1]}
	}
	return out
}
