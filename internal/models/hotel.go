package models

import (
	"time"

	"github.com/google/uuid"
)

// Hotel represents a registered hotel tenant. IsActive and
// SubscriptionEndDate are mutated only by the payment verification
// workflow and the expiry sweep; hotels are never hard-deleted.
type Hotel struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	OwnerUserID         uuid.UUID  `json:"owner_user_id" db:"owner_user_id"`
	Name                string     `json:"name" db:"name"`
	Description         NullString `json:"description,omitempty" db:"description"`
	Location            NullString `json:"location,omitempty" db:"location"`
	Contact             JSONB      `json:"contact,omitempty" db:"contact"`
	Services            JSONB      `json:"services,omitempty" db:"services"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	SubscriptionEndDate NullTime   `json:"subscription_end_date,omitempty" db:"subscription_end_date"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// HasValidSubscriptionUntil reports whether the recorded subscription
// end date covers the given instant
func (h *Hotel) HasValidSubscriptionUntil(now time.Time) bool {
	return h.SubscriptionEndDate.Valid && !h.SubscriptionEndDate.Time.Before(now)
}
