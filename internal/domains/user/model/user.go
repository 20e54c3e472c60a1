package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the profile record. Authentication happens upstream; the backend
// only ever sees the user id from the JWT, so rows are created lazily on
// first write.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`

	Location          *Location  `json:"location,omitempty"`
	LocationUpdatedAt *time.Time `json:"location_updated_at,omitempty" db:"location_updated_at"`

	RatingTotal decimal.Decimal `json:"-" db:"rating_total"`
	RatingCount int             `json:"rating_count" db:"rating_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Location is the user's saved pickup point. Books inherit it at creation
// time and keep their own copy afterwards.
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress *string `json:"formatted_address,omitempty"`
}

// RatingScore is the exact average of all received ratings, nil while the
// user is unrated.
func (u *User) RatingScore() *decimal.Decimal {
	if u.RatingCount == 0 {
		return nil
	}
	avg := u.RatingTotal.Div(decimal.NewFromInt(int64(u.RatingCount)))
	return &avg
}

// Rating is a single received rating. Rows are append-only; the aggregate on
// the user row is recomputed in the same transaction that inserts them.
type Rating struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RatedID   uuid.UUID `json:"rated_id" db:"rated_id"`
	RaterID   uuid.UUID `json:"rater_id" db:"rater_id"`
	Value     int       `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PushToken links a device to a user for transition notifications.
type PushToken struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
