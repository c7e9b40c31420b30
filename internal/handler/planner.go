package handler

// Handlers for the personal planner: a hand-picked set of showtimes a
// user intends to attend, kept separately from the collected data so
// refreshes never touch it.

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-times/internal/model"
	"github.com/iliyamo/movie-times/internal/repository"
	"github.com/iliyamo/movie-times/internal/schedule"
)

// PlannerHandler exposes CRUD operations on planned showtimes.  Date
// expressions are parsed in Loc, the service default time zone.
type PlannerHandler struct {
	PlannerRepo *repository.PlannerRepo
	Loc         *time.Location
}

// GetPlanner lists planned showtimes in the requested date range,
// defaulting to "movie week".
func (h *PlannerHandler) GetPlanner(c echo.Context) error {
	first, last, err := h.dateRange(c)
	if err != nil {
		if errors.Is(err, schedule.ErrParse) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	rows, err := h.PlannerRepo.Load(c.Request().Context(), first, last)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"showtimes": rows})
}

// AddPlanned stores one planned showtime from the request body.  The row
// must carry a theater, title and start time; adding the same showtime
// twice is a no-op.
func (h *PlannerHandler) AddPlanned(c echo.Context) error {
	var row model.ShowtimeRow
	if err := c.Bind(&row); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := row.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.PlannerRepo.Add(c.Request().Context(), row); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusCreated)
}

// RemovePlanned deletes the planned showtime identified by the request
// body.  Removing a showtime that was never planned succeeds quietly.
func (h *PlannerHandler) RemovePlanned(c echo.Context) error {
	var row model.ShowtimeRow
	if err := c.Bind(&row); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.PlannerRepo.Remove(c.Request().Context(), row); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearPlanner removes every planned showtime in the requested date
// range.
func (h *PlannerHandler) ClearPlanner(c echo.Context) error {
	first, last, err := h.dateRange(c)
	if err != nil {
		if errors.Is(err, schedule.ErrParse) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if err := h.PlannerRepo.Clear(c.Request().Context(), first, last); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlannerHandler) dateRange(c echo.Context) (time.Time, time.Time, error) {
	expr := c.QueryParam("date")
	if expr == "" {
		expr = "movie week"
	}
	first, last, err := schedule.NewParser(h.Loc).ParseDateRange(expr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	// The parsed range is inclusive of its last day; the store window
	// is half-open.
	return first, last.AddDate(0, 0, 1), nil
}
