package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	bookModel "booklend-backend/internal/domains/book/model"
)

// DefaultLimit caps result sets when the caller sends none.
const DefaultLimit = 50

// SearchRequest describes one proximity query. ExcludeOwnerID is uuid.Nil
// for anonymous callers.
type SearchRequest struct {
	Latitude     float64
	Longitude    float64
	RadiusKm     float64
	Query        string
	Limit        int
	ShowBorrowed bool

	ExcludeOwnerID uuid.UUID
}

func (r SearchRequest) Validate() error {
	return validation.Errors{
		"lat":       validation.Validate(r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		"lng":       validation.Validate(r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		"radius_km": validation.Validate(r.RadiusKm, validation.Required, validation.Min(0.01), validation.Max(500.0)),
		"limit":     validation.Validate(r.Limit, validation.Min(0)),
	}.Filter()
}

// Result is one matched book with its true distance from the query point.
type Result struct {
	Book       bookModel.BookResponse `json:"book"`
	DistanceKm float64                `json:"distance_km"`
}
