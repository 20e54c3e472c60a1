package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bookModel "booklend-backend/internal/domains/book/model"
	"booklend-backend/internal/domains/loan/model"
	"booklend-backend/internal/domains/loan/service"
	"booklend-backend/internal/shared/middleware"
	"booklend-backend/internal/shared/response"
)

type LoanHandler struct {
	service service.LoanService
}

func NewLoanHandler(s service.LoanService) *LoanHandler {
	return &LoanHandler{service: s}
}

// RequestBook handles POST /books/:id/request.
func (h *LoanHandler) RequestBook(c *gin.Context) {
	h.transition(c, h.service.RequestBook)
}

// AcceptRequest handles POST /books/:id/accept.
func (h *LoanHandler) AcceptRequest(c *gin.Context) {
	h.transition(c, h.service.AcceptRequest)
}

// RejectRequest handles POST /books/:id/reject.
func (h *LoanHandler) RejectRequest(c *gin.Context) {
	h.transition(c, h.service.RejectRequest)
}

// CancelRequest handles POST /books/:id/cancel.
func (h *LoanHandler) CancelRequest(c *gin.Context) {
	h.transition(c, h.service.CancelRequest)
}

// ReturnBook handles POST /books/:id/return.
func (h *LoanHandler) ReturnBook(c *gin.Context) {
	h.transition(c, h.service.ReturnBook)
}

// ListMine handles GET /loans/mine.
func (h *LoanHandler) ListMine(c *gin.Context) {
	borrowerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	opts := model.ListLoansOptions{
		ActiveOnly: c.Query("active_only") == "true",
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.BadRequest(c, "Invalid limit")
			return
		}
		opts.Limit = limit
	}

	loans, err := h.service.ListByBorrower(c.Request.Context(), borrowerID, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, loans, &response.Meta{
		Limit: opts.Limit,
		Total: len(loans),
	})
}

// transition is the shared shape of the five action endpoints: resolve actor
// and book id, run the transition, map domain errors.
func (h *LoanHandler) transition(c *gin.Context, fn func(ctx context.Context, actorID, bookID uuid.UUID) (*model.Loan, error)) {
	actorID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	loan, err := fn(c.Request.Context(), actorID, bookID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, loan)
}

func (h *LoanHandler) respondError(c *gin.Context, err error) {
	status, message, code := bookModel.GetErrorResponse(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("loan request failed")
	}
	response.ErrorResponse(c, status, code, message)
}
