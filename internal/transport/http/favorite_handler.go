package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/terravia/terravia-backend/internal/service"
	"github.com/terravia/terravia-backend/internal/util"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

func RegisterFavorites(e *echo.Echo, identity *service.IdentityService, favorites *service.FavoriteService) {
	handler := &FavoriteHandler{favorites: favorites}

	group := e.Group("/api/v1/favorites", ResolveIdentity(identity))
	group.GET("", handler.listFavorites)
	group.GET("/:trip_id", handler.isFavorite)
	group.POST("/:trip_id/toggle", handler.toggleFavorite)

	e.GET("/api/v1/trips/:trip_id/favorites/count", handler.countFavorites)
}

// listFavorites handles GET /api/v1/favorites
func (h *FavoriteHandler) listFavorites(c echo.Context) error {
	tripIDs := h.favorites.List(c.Request().Context(), CurrentIdentity(c), DeviceID(c))
	return c.JSON(http.StatusOK, util.Envelope{"trip_ids": tripIDs})
}

// isFavorite handles GET /api/v1/favorites/{trip_id}
func (h *FavoriteHandler) isFavorite(c echo.Context) error {
	tripID := strings.TrimSpace(c.Param("trip_id"))
	if tripID == "" {
		return c.JSON(http.StatusBadRequest, util.Error("trip_id is required"))
	}

	favorite := h.favorites.IsFavorite(c.Request().Context(), CurrentIdentity(c), DeviceID(c), tripID)
	return c.JSON(http.StatusOK, util.Envelope{"trip_id": tripID, "favorite": favorite})
}

// toggleFavorite handles POST /api/v1/favorites/{trip_id}/toggle. The
// response carries the post-toggle set so the client can render without a
// follow-up list call; on failure nothing changed and the client should keep
// showing the pre-toggle state.
func (h *FavoriteHandler) toggleFavorite(c echo.Context) error {
	tripID := strings.TrimSpace(c.Param("trip_id"))

	tripIDs, err := h.favorites.Toggle(c.Request().Context(), CurrentIdentity(c), DeviceID(c), tripID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFavoriteValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{"trip_ids": tripIDs})
}

// countFavorites handles GET /api/v1/trips/{trip_id}/favorites/count
func (h *FavoriteHandler) countFavorites(c echo.Context) error {
	tripID := strings.TrimSpace(c.Param("trip_id"))
	if tripID == "" {
		return c.JSON(http.StatusBadRequest, util.Error("trip_id is required"))
	}

	count, err := h.favorites.CountByTrip(c.Request().Context(), tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to fetch favorites count"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"trip_id":          tripID,
		"favorites_count":  count,
		"last_updated_utc": time.Now().UTC().Format(time.RFC3339),
	})
}
