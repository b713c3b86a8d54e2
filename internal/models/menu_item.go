package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem represents a single dish or drink on a hotel's menu.
// Items are created and edited only through approved MenuUpdateRequests;
// PricePaise is the price in integer minor units (paise), formatted only
// at presentation boundaries.
type MenuItem struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	HotelID       uuid.UUID  `json:"hotel_id" db:"hotel_id"`
	Name          string     `json:"name" db:"name"`
	PricePaise    int64      `json:"price_paise" db:"price_paise"`
	Description   NullString `json:"description,omitempty" db:"description"`
	PhotoURL      NullString `json:"photo_url,omitempty" db:"photo_url"`
	Category      string     `json:"category" db:"category"`
	MealType      NullString `json:"meal_type,omitempty" db:"meal_type"`
	AvailableTill NullString `json:"available_till,omitempty" db:"available_till"`
	IsApproved    bool       `json:"is_approved" db:"is_approved"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
