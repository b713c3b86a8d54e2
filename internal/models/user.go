package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleHotelOwner = "hotel_owner"
	RoleSuperAdmin = "super_admin"
)

// User represents a platform account. A hotel_owner owns exactly one
// hotel (HotelID set at registration); super_admin accounts have no hotel.
type User struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Email        string        `json:"email" db:"email"`
	PasswordHash string        `json:"-" db:"password_hash"` // Never expose
	Role         string        `json:"role" db:"role"`
	HotelID      uuid.NullUUID `json:"hotel_id,omitempty" db:"hotel_id"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// IsSuperAdmin reports whether the user holds the platform operator role
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// OwnsHotel reports whether the user is the owner of the given hotel
func (u *User) OwnsHotel(hotelID uuid.UUID) bool {
	return u.Role == RoleHotelOwner && u.HotelID.Valid && u.HotelID.UUID == hotelID
}
