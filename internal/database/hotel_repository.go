package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/menuqr/hotel-menu-backend/internal/models"
)

// HotelRepository handles hotel database operations
type HotelRepository struct {
	db *sqlx.DB
}

// NewHotelRepository creates a new hotel repository
func NewHotelRepository(db *sqlx.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

// GetHotelByID retrieves a hotel by ID
func (r *HotelRepository) GetHotelByID(id uuid.UUID) (*models.Hotel, error) {
	var hotel models.Hotel

	query := `
		SELECT id, owner_user_id, name, description, location, contact, services,
		       is_active, subscription_end_date, created_at, updated_at
		FROM hotels
		WHERE id = $1
	`

	err := r.db.Get(&hotel, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Hotel not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get hotel by ID: %w", err)
	}

	return &hotel, nil
}

// ListHotels retrieves all hotels ordered by creation time, newest first
func (r *HotelRepository) ListHotels(limit, offset int) ([]*models.Hotel, error) {
	var hotels []*models.Hotel

	query := `
		SELECT id, owner_user_id, name, description, location, contact, services,
		       is_active, subscription_end_date, created_at, updated_at
		FROM hotels
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	err := r.db.Select(&hotels, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}

	return hotels, nil
}

// GetLapsedActiveHotels returns active hotels whose recorded subscription
// end date has passed. Candidates for the expiry sweep; each one is
// re-checked against the subscriptions table before deactivation.
func (r *HotelRepository) GetLapsedActiveHotels(now time.Time) ([]*models.Hotel, error) {
	var hotels []*models.Hotel

	query := `
		SELECT id, owner_user_id, name, description, location, contact, services,
		       is_active, subscription_end_date, created_at, updated_at
		FROM hotels
		WHERE is_active = TRUE
		  AND subscription_end_date IS NOT NULL
		  AND subscription_end_date < $1
	`

	err := r.db.Select(&hotels, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get lapsed hotels: %w", err)
	}

	return hotels, nil
}

// DeactivateHotel marks a hotel inactive. Called only by the expiry sweep.
func (r *HotelRepository) DeactivateHotel(id uuid.UUID) error {
	query := `
		UPDATE hotels
		SET is_active = FALSE,
		    updated_at = $1
		WHERE id = $2
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate hotel: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("hotel not found")
	}

	return nil
}

// ExtendSubscriptionEndDate moves the recorded end date forward when a
// hotel still holds a later paid subscription at sweep time
func (r *HotelRepository) ExtendSubscriptionEndDate(id uuid.UUID, endDate time.Time) error {
	query := `
		UPDATE hotels
		SET subscription_end_date = $1,
		    updated_at = $2
		WHERE id = $3
	`

	if _, err := r.db.Exec(query, endDate, time.Now(), id); err != nil {
		return fmt.Errorf("failed to extend subscription end date: %w", err)
	}

	return nil
}
