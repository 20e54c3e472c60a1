package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"booklend-backend/internal/domains/book/model"
	"booklend-backend/internal/domains/book/service"
	"booklend-backend/internal/shared/middleware"
	"booklend-backend/internal/shared/response"
)

type BookHandler struct {
	service service.BookService
}

func NewBookHandler(s service.BookService) *BookHandler {
	return &BookHandler{service: s}
}

// AddBook handles POST /books (multipart: title, author, image).
func (h *BookHandler) AddBook(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.AddBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book data", err.Error())
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "Cover image is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Cannot read cover image")
		return
	}
	defer src.Close()
	image, err := io.ReadAll(src)
	if err != nil {
		response.BadRequest(c, "Cannot read cover image")
		return
	}

	book, err := h.service.AddBook(c.Request.Context(), ownerID, req, image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, book.ToResponse())
}

// DeleteBook handles DELETE /books/:id.
func (h *BookHandler) DeleteBook(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), ownerID, bookID); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListMine handles GET /books/mine.
func (h *BookHandler) ListMine(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	books, err := h.service.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponses(books))
}

// ListBorrowed handles GET /books/borrowed.
func (h *BookHandler) ListBorrowed(c *gin.Context) {
	borrowerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	books, err := h.service.ListByBorrower(c.Request.Context(), borrowerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponses(books))
}

func toResponses(books []model.Book) []model.BookResponse {
	out := make([]model.BookResponse, 0, len(books))
	for i := range books {
		out = append(out, books[i].ToResponse())
	}
	return out
}

func (h *BookHandler) respondError(c *gin.Context, err error) {
	status, message, code := model.GetErrorResponse(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("book request failed")
	}
	response.ErrorResponse(c, status, code, message)
}
