package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"booklend-backend/internal/domains/user/model"
	"booklend-backend/internal/domains/user/service"
	"booklend-backend/internal/shared/middleware"
	"booklend-backend/internal/shared/response"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// GetLocation handles GET /users/me/location. Data is null until the user
// saves a location.
func (h *UserHandler) GetLocation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	loc, err := h.service.GetLocation(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, loc)
}

// SaveLocation handles PUT /users/me/location.
func (h *UserHandler) SaveLocation(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.SaveLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.SaveLocation(c.Request.Context(), userID, req); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, req.Location())
}

// RateUser handles POST /users/:id/ratings.
func (h *UserHandler) RateUser(c *gin.Context) {
	raterID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	ratedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	var req model.RateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.RateUser(c.Request.Context(), raterID, ratedID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// GetRating handles GET /users/:id/ratings.
func (h *UserHandler) GetRating(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	resp, err := h.service.GetRating(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// RegisterPushToken handles POST /users/me/push-tokens.
func (h *UserHandler) RegisterPushToken(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid push token", err.Error())
		return
	}

	if err := h.service.RegisterPushToken(c.Request.Context(), userID, req); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"registered": true})
}

func (h *UserHandler) respondError(c *gin.Context, err error) {
	status, message, code := model.GetErrorResponse(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("user request failed")
	}
	response.ErrorResponse(c, status, code, message)
}
