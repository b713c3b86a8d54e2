package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MenuUpdateRequestStatus represents the lifecycle state of an update request.
// Matches PostgreSQL ENUM: menu_update_request_status
type MenuUpdateRequestStatus string

const (
	RequestStatusPending  MenuUpdateRequestStatus = "pending"
	RequestStatusApproved MenuUpdateRequestStatus = "approved"
	RequestStatusRejected MenuUpdateRequestStatus = "rejected"
)

// IsTerminal reports whether the status permits no further transition
func (s MenuUpdateRequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// MenuItemChanges is the closed patch schema carried by an update request.
// Each field is optional; only fields present in the submitted JSON are
// applied to the target item on approval. A new-item request must carry
// at least name, price and category.
type MenuItemChanges struct {
	Name          *string `json:"name,omitempty"`
	PricePaise    *int64  `json:"price_paise,omitempty"`
	Description   *string `json:"description,omitempty"`
	PhotoURL      *string `json:"photo_url,omitempty"`
	Category      *string `json:"category,omitempty"`
	MealType      *string `json:"meal_type,omitempty"`
	AvailableTill *string `json:"available_till,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all
func (c *MenuItemChanges) IsEmpty() bool {
	return c.Name == nil && c.PricePaise == nil && c.Description == nil &&
		c.PhotoURL == nil && c.Category == nil && c.MealType == nil &&
		c.AvailableTill == nil
}

// ValidateForNewItem checks the fields required to materialize a new item
func (c *MenuItemChanges) ValidateForNewItem() error {
	if c.Name == nil || *c.Name == "" {
		return fmt.Errorf("new item requires a name")
	}
	if c.PricePaise == nil || *c.PricePaise < 0 {
		return fmt.Errorf("new item requires a non-negative price")
	}
	if c.Category == nil || *c.Category == "" {
		return fmt.Errorf("new item requires a category")
	}
	return nil
}

// ApplyTo copies the present fields onto an existing item, leaving the
// rest untouched
func (c *MenuItemChanges) ApplyTo(item *MenuItem) {
	if c.Name != nil {
		item.Name = *c.Name
	}
	if c.PricePaise != nil {
		item.PricePaise = *c.PricePaise
	}
	if c.Description != nil {
		item.Description = NullString{}
		item.Description.Valid = true
		item.Description.String = *c.Description
	}
	if c.PhotoURL != nil {
		item.PhotoURL = NullString{}
		item.PhotoURL.Valid = true
		item.PhotoURL.String = *c.PhotoURL
	}
	if c.Category != nil {
		item.Category = *c.Category
	}
	if c.MealType != nil {
		item.MealType = NullString{}
		item.MealType.Valid = true
		item.MealType.String = *c.MealType
	}
	if c.AvailableTill != nil {
		item.AvailableTill = NullString{}
		item.AvailableTill.Valid = true
		item.AvailableTill.String = *c.AvailableTill
	}
}

// Value implements the driver.Valuer interface.
// Returns JSON as string for compatibility with pgx simple protocol mode.
func (c MenuItemChanges) Value() (driver.Value, error) {
	bytes, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface
func (c *MenuItemChanges) Scan(value interface{}) error {
	if value == nil {
		*c = MenuItemChanges{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return errors.New("unsupported type for MenuItemChanges")
}

// MenuUpdateRequest represents a proposed menu change awaiting decision.
// MenuItemID nil means "create a new item from the patch"; non-nil means
// "patch that existing item". SubmittedAt is set at creation and immutable.
type MenuUpdateRequest struct {
	ID               uuid.UUID               `json:"id" db:"id"`
	HotelID          uuid.UUID               `json:"hotel_id" db:"hotel_id"`
	MenuItemID       uuid.NullUUID           `json:"menu_item_id,omitempty" db:"menu_item_id"`
	RequestedChanges MenuItemChanges         `json:"requested_changes" db:"requested_changes"`
	Status           MenuUpdateRequestStatus `json:"status" db:"status"`
	SubmittedAt      time.Time               `json:"submitted_at" db:"submitted_at"`
	DecidedAt        NullTime                `json:"decided_at,omitempty" db:"decided_at"`
	DecidedBy        uuid.NullUUID           `json:"decided_by,omitempty" db:"decided_by"`
}
