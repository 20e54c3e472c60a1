package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"booklend-backend/internal/domains/search/model"
	"booklend-backend/internal/domains/search/service"
	"booklend-backend/internal/shared/middleware"
	"booklend-backend/internal/shared/response"
)

type SearchHandler struct {
	service service.SearchService
}

func NewSearchHandler(s service.SearchService) *SearchHandler {
	return &SearchHandler{service: s}
}

// Nearby handles GET /books/nearby. Public; authenticated callers get their
// own books excluded.
func (h *SearchHandler) Nearby(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	results, err := h.service.Nearby(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("nearby search failed")
		response.InternalServerError(c, "Search failed")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, results, &response.Meta{Total: len(results)})
}

func (h *SearchHandler) parseRequest(c *gin.Context) (model.SearchRequest, bool) {
	var req model.SearchRequest

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		response.BadRequest(c, "lat is required and must be a number")
		return req, false
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		response.BadRequest(c, "lng is required and must be a number")
		return req, false
	}
	radius, err := strconv.ParseFloat(c.Query("radius_km"), 64)
	if err != nil {
		response.BadRequest(c, "radius_km is required and must be a number")
		return req, false
	}

	req.Latitude = lat
	req.Longitude = lng
	req.RadiusKm = radius
	req.Query = c.Query("q")
	req.ShowBorrowed = c.Query("show_borrowed") == "true"

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return req, false
		}
		req.Limit = limit
	}

	if userID, ok := middleware.UserID(c); ok {
		req.ExcludeOwnerID = userID
	}

	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid search parameters", err.Error())
		return req, false
	}
	return req, true
}
