package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/menuqr/hotel-menu-backend/internal/models"
)

// Errors surfaced by decision methods so callers can distinguish a
// terminal-state request from a vanished target item.
var (
	// ErrRequestNotPending is returned when a decision targets a request
	// that has already been approved or rejected
	ErrRequestNotPending = errors.New("request is not pending")

	// ErrTargetItemMissing is returned when an approved patch references
	// a menu item that no longer exists
	ErrTargetItemMissing = errors.New("target menu item no longer exists")
)

// MenuUpdateRequestRepository handles menu update request operations
type MenuUpdateRequestRepository struct {
	db *sqlx.DB
}

// NewMenuUpdateRequestRepository creates a new menu update request repository
func NewMenuUpdateRequestRepository(db *sqlx.DB) *MenuUpdateRequestRepository {
	return &MenuUpdateRequestRepository{db: db}
}

// CreateRequest persists a new pending update request
func (r *MenuUpdateRequestRepository) CreateRequest(req *models.MenuUpdateRequest) error {
	req.ID = uuid.New()
	req.Status = models.RequestStatusPending
	req.SubmittedAt = time.Now()

	query := `
		INSERT INTO menu_update_requests (id, hotel_id, menu_item_id, requested_changes, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(query,
		req.ID, req.HotelID, req.MenuItemID, req.RequestedChanges, req.Status, req.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create update request: %w", err)
	}

	return nil
}

// GetRequestByID retrieves an update request by ID
func (r *MenuUpdateRequestRepository) GetRequestByID(id uuid.UUID) (*models.MenuUpdateRequest, error) {
	var req models.MenuUpdateRequest

	query := `
		SELECT id, hotel_id, menu_item_id, requested_changes, status, submitted_at, decided_at, decided_by
		FROM menu_update_requests
		WHERE id = $1
	`

	err := r.db.Get(&req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Request not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get update request by ID: %w", err)
	}

	return &req, nil
}

// ListRequests retrieves update requests, optionally filtered by hotel
// and/or status. Super admins list all hotels; owners pass their own
// hotel ID. Newest submissions first.
func (r *MenuUpdateRequestRepository) ListRequests(hotelID *uuid.UUID, status *models.MenuUpdateRequestStatus) ([]*models.MenuUpdateRequest, error) {
	var requests []*models.MenuUpdateRequest

	query := `
		SELECT id, hotel_id, menu_item_id, requested_changes, status, submitted_at, decided_at, decided_by
		FROM menu_update_requests
	`
	var conditions []string
	var args []interface{}

	if hotelID != nil {
		args = append(args, *hotelID)
		conditions = append(conditions, fmt.Sprintf("hotel_id = $%d", len(args)))
	}
	if status != nil {
		args = append(args, *status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY submitted_at DESC"

	err := r.db.Select(&requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list update requests: %w", err)
	}

	return requests, nil
}

// RejectRequest marks a pending request rejected. Returns
// ErrRequestNotPending when the request exists but is already decided,
// or a plain not-found error when it does not exist.
func (r *MenuUpdateRequestRepository) RejectRequest(id uuid.UUID, decidedBy uuid.UUID) error {
	query := `
		UPDATE menu_update_requests
		SET status = $1,
		    decided_at = $2,
		    decided_by = $3
		WHERE id = $4
		  AND status = $5
	`

	result, err := r.db.Exec(query,
		models.RequestStatusRejected, time.Now(), decidedBy, id, models.RequestStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to reject update request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrRequestNotPending
	}

	return nil
}

// ApproveAndApply marks a pending request approved and applies its patch
// to the menu, atomically. A request with no target item inserts a new
// approved item from the patch; a request targeting an existing item
// updates only the fields present in the patch and re-approves the item.
// Both writes happen in one transaction so the menu can never reflect a
// half-applied decision.
func (r *MenuUpdateRequestRepository) ApproveAndApply(req *models.MenuUpdateRequest, decidedBy uuid.UUID) (*models.MenuItem, error) {
	now := time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	decisionQuery := `
		UPDATE menu_update_requests
		SET status = $1,
		    decided_at = $2,
		    decided_by = $3
		WHERE id = $4
		  AND status = $5
	`
	result, err := tx.Exec(decisionQuery,
		models.RequestStatusApproved, now, decidedBy, req.ID, models.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve update request: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrRequestNotPending
	}

	var item *models.MenuItem
	if req.MenuItemID.Valid {
		item, err = applyPatchToItem(tx, req.MenuItemID.UUID, &req.RequestedChanges, now)
	} else {
		item, err = insertItemFromPatch(tx, req.HotelID, &req.RequestedChanges, now)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	req.Status = models.RequestStatusApproved
	req.DecidedAt = models.NewNullTime(now)
	req.DecidedBy = uuid.NullUUID{UUID: decidedBy, Valid: true}

	return item, nil
}

// insertItemFromPatch materializes a new approved item from a patch.
// The patch has already been validated to carry name, price and category.
func insertItemFromPatch(tx *sqlx.Tx, hotelID uuid.UUID, changes *models.MenuItemChanges, now time.Time) (*models.MenuItem, error) {
	item := &models.MenuItem{
		ID:         uuid.New(),
		HotelID:    hotelID,
		IsApproved: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	changes.ApplyTo(item)

	query := `
		INSERT INTO menu_items (id, hotel_id, name, price_paise, description, photo_url,
		                        category, meal_type, available_till, is_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.Exec(query,
		item.ID, item.HotelID, item.Name, item.PricePaise, item.Description, item.PhotoURL,
		item.Category, item.MealType, item.AvailableTill, item.IsApproved, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert menu item from patch: %w", err)
	}

	return item, nil
}

// applyPatchToItem updates only the fields present in the patch and
// marks the item approved again
func applyPatchToItem(tx *sqlx.Tx, itemID uuid.UUID, changes *models.MenuItemChanges, now time.Time) (*models.MenuItem, error) {
	setClauses := []string{}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Name != nil {
		addSet("name", *changes.Name)
	}
	if changes.PricePaise != nil {
		addSet("price_paise", *changes.PricePaise)
	}
	if changes.Description != nil {
		addSet("description", *changes.Description)
	}
	if changes.PhotoURL != nil {
		addSet("photo_url", *changes.PhotoURL)
	}
	if changes.Category != nil {
		addSet("category", *changes.Category)
	}
	if changes.MealType != nil {
		addSet("meal_type", *changes.MealType)
	}
	if changes.AvailableTill != nil {
		addSet("available_till", *changes.AvailableTill)
	}
	addSet("is_approved", true)
	addSet("updated_at", now)

	args = append(args, itemID)
	query := fmt.Sprintf(
		"UPDATE menu_items SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args),
	)

	result, err := tx.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply patch to menu item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Item was hard-deleted after the request was submitted
		return nil, ErrTargetItemMissing
	}

	var item models.MenuItem
	selectQuery := `
		SELECT id, hotel_id, name, price_paise, description, photo_url, category,
		       meal_type, available_till, is_approved, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`
	if err := tx.Get(&item, selectQuery, itemID); err != nil {
		return nil, fmt.Errorf("failed to reload patched menu item: %w", err)
	}

	return &item, nil
}
