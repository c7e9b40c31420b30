package handler

// Handlers for per-title metadata.  Hiding a movie removes it from
// listing responses without touching its stored showtimes, which keeps
// reconciliation unaffected.

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-times/internal/repository"
)

// MovieHandler exposes visibility controls for movie titles.
type MovieHandler struct {
	MetadataRepo *repository.MetadataRepo
}

// HideMovie marks the title in the path parameter as hidden.
func (h *MovieHandler) HideMovie(c echo.Context) error {
	title := c.Param("title")
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing title"})
	}
	if err := h.MetadataRepo.HideMovie(c.Request().Context(), title); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ShowMovie clears the hidden flag for the title in the path parameter.
func (h *MovieHandler) ShowMovie(c echo.Context) error {
	title := c.Param("title")
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing title"})
	}
	if err := h.MetadataRepo.ShowMovie(c.Request().Context(), title); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
