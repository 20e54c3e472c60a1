package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// SaveLocationRequest replaces the caller's saved location.
type SaveLocationRequest struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress *string `json:"formatted_address"`
}

func (r SaveLocationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

func (r SaveLocationRequest) Location() Location {
	return Location{
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		FormattedAddress: r.FormattedAddress,
	}
}

// RateUserRequest submits one rating for another user.
type RateUserRequest struct {
	Value int `json:"value"`
}

func (r RateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Value, validation.Required, validation.Min(1), validation.Max(5)),
	)
}

// RegisterPushTokenRequest registers one device token. Re-registering the
// same token is a no-op.
type RegisterPushTokenRequest struct {
	Token string `json:"token"`
}

func (r RegisterPushTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Length(8, 512)),
	)
}

// RatingResponse is the public aggregate.
type RatingResponse struct {
	Average *decimal.Decimal `json:"average"`
	Count   int              `json:"count"`
}

func (u *User) RatingResponse() RatingResponse {
	return RatingResponse{
		Average: u.RatingScore(),
		Count:   u.RatingCount,
	}
}
