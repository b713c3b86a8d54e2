package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/menuqr/hotel-menu-backend/internal/models"
)

// MenuItemRepository handles menu item database operations.
// Items are only created and mutated through approved update requests
// (see MenuUpdateRequestRepository.ApproveAndApply); this repository
// covers reads and deletion.
type MenuItemRepository struct {
	db *sqlx.DB
}

// NewMenuItemRepository creates a new menu item repository
func NewMenuItemRepository(db *sqlx.DB) *MenuItemRepository {
	return &MenuItemRepository{db: db}
}

// GetItemByID retrieves a menu item by ID
func (r *MenuItemRepository) GetItemByID(id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem

	query := `
		SELECT id, hotel_id, name, price_paise, description, photo_url, category,
		       meal_type, available_till, is_approved, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`

	err := r.db.Get(&item, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Item not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get menu item by ID: %w", err)
	}

	return &item, nil
}

// ListItemsByHotel retrieves all items for a hotel, newest first
func (r *MenuItemRepository) ListItemsByHotel(hotelID uuid.UUID) ([]*models.MenuItem, error) {
	var items []*models.MenuItem

	query := `
		SELECT id, hotel_id, name, price_paise, description, photo_url, category,
		       meal_type, available_till, is_approved, created_at, updated_at
		FROM menu_items
		WHERE hotel_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&items, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}

	return items, nil
}

// ListApprovedItemsByHotel retrieves approved items for the public menu,
// grouped for display by category then name
func (r *MenuItemRepository) ListApprovedItemsByHotel(hotelID uuid.UUID) ([]*models.MenuItem, error) {
	var items []*models.MenuItem

	query := `
		SELECT id, hotel_id, name, price_paise, description, photo_url, category,
		       meal_type, available_till, is_approved, created_at, updated_at
		FROM menu_items
		WHERE hotel_id = $1
		  AND is_approved = TRUE
		ORDER BY category, name
	`

	err := r.db.Select(&items, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved menu items: %w", err)
	}

	return items, nil
}

// DeleteItem hard-deletes a menu item. Pending update requests that
// reference it keep their dangling reference and fail later at approval.
func (r *MenuItemRepository) DeleteItem(id uuid.UUID) error {
	query := `DELETE FROM menu_items WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("menu item not found")
	}

	return nil
}
