package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// AddBookRequest is the multipart form for creating a book. The image part is
// read by the handler and passed to the service as raw bytes.
type AddBookRequest struct {
	Title  string `form:"title"`
	Author string `form:"author"`
}

func (r AddBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 200),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, 200),
		),
	)
}

// BookResponse is the public shape of a book.
type BookResponse struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	ImageURL   string     `json:"image_url"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Status     BookStatus `json:"status"`
	BorrowerID *uuid.UUID `json:"borrower_id,omitempty"`
	Location   *Location  `json:"location,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (b *Book) ToResponse() BookResponse {
	loc := b.Location
	return BookResponse{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		ImageURL:   b.ImageURL,
		OwnerID:    b.OwnerID,
		Status:     b.Status,
		BorrowerID: b.BorrowerID,
		Location:   &loc,
		CreatedAt:  b.CreatedAt,
	}
}
