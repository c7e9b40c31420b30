package handler

// Handler for the deletion report: showtimes that disappeared from the
// source on a given day, filtered down to genuine cancellations.

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-times/internal/reconcile"
)

// DeletedHandler exposes the deletion report.
type DeletedHandler struct {
	Engine *reconcile.Engine
	Loc    *time.Location
}

// GetDeleted reports showtimes detected as deleted on one day.  The
// "date" query parameter must be YYYY-MM-DD and defaults to today.
func (h *DeletedHandler) GetDeleted(c echo.Context) error {
	day := time.Now().In(h.Loc)
	if expr := c.QueryParam("date"); expr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", expr, h.Loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		day = parsed
	}

	records, err := h.Engine.DeletionReport(c.Request().Context(), day)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": records})
}
