package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/models"
)

// ApprovalService implements the menu update request workflow: owners
// submit change requests, super admins decide them, approved patches are
// applied to the menu atomically.
type ApprovalService struct {
	requests *database.MenuUpdateRequestRepository
	items    *database.MenuItemRepository
	hotels   *database.HotelRepository
	logger   *logrus.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	requests *database.MenuUpdateRequestRepository,
	items *database.MenuItemRepository,
	hotels *database.HotelRepository,
	logger *logrus.Logger,
) *ApprovalService {
	return &ApprovalService{
		requests: requests,
		items:    items,
		hotels:   hotels,
		logger:   logger,
	}
}

// SubmitRequest creates a pending update request for the owner's hotel,
// which must be active. A nil itemID proposes a new item and the patch
// must carry name, price and category; a non-nil itemID must reference
// an item of that hotel. Concurrent pending requests for the same item
// are allowed.
func (s *ApprovalService) SubmitRequest(hotelID uuid.UUID, itemID *uuid.UUID, changes models.MenuItemChanges) (*models.MenuUpdateRequest, error) {
	if changes.IsEmpty() {
		return nil, fmt.Errorf("%w: requested changes cannot be empty", ErrValidation)
	}
	if itemID == nil {
		if err := changes.ValidateForNewItem(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	hotel, err := s.hotels.GetHotelByID(hotelID)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, fmt.Errorf("%w: hotel %s", ErrNotFound, hotelID)
	}
	// Lapsed hotels must renew before proposing menu changes
	if !hotel.IsActive {
		return nil, fmt.Errorf("%w: hotel subscription is not active", ErrForbidden)
	}

	req := &models.MenuUpdateRequest{
		HotelID:          hotelID,
		RequestedChanges: changes,
	}

	if itemID != nil {
		item, err := s.items.GetItemByID(*itemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("%w: menu item %s", ErrNotFound, itemID)
		}
		if item.HotelID != hotelID {
			return nil, fmt.Errorf("%w: item belongs to another hotel", ErrForbidden)
		}
		req.MenuItemID = uuid.NullUUID{UUID: *itemID, Valid: true}
	}

	if err := s.requests.CreateRequest(req); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"hotel_id":   hotelID,
		"new_item":   itemID == nil,
	}).Info("Menu update request submitted")

	return req, nil
}

// ListRequests returns requests visible to the caller: super admins see
// all hotels, owners see their own. An optional status filters the list.
func (s *ApprovalService) ListRequests(role string, ownHotelID *uuid.UUID, status *models.MenuUpdateRequestStatus) ([]*models.MenuUpdateRequest, error) {
	switch role {
	case models.RoleSuperAdmin:
		return s.requests.ListRequests(nil, status)
	case models.RoleHotelOwner:
		if ownHotelID == nil {
			return nil, fmt.Errorf("%w: owner account has no hotel", ErrForbidden)
		}
		return s.requests.ListRequests(ownHotelID, status)
	default:
		return nil, fmt.Errorf("%w: role %q cannot list update requests", ErrForbidden, role)
	}
}

// DecideRequest approves or rejects a pending request. On approval the
// patch is applied to the menu in the same transaction; the affected item
// is returned. A request already in a terminal state yields ErrConflict.
func (s *ApprovalService) DecideRequest(requestID uuid.UUID, approve bool, decidedBy uuid.UUID) (*models.MenuUpdateRequest, *models.MenuItem, error) {
	req, err := s.requests.GetRequestByID(requestID)
	if err != nil {
		return nil, nil, err
	}
	if req == nil {
		return nil, nil, fmt.Errorf("%w: update request %s", ErrNotFound, requestID)
	}
	if req.Status.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: request already %s", ErrConflict, req.Status)
	}

	if !approve {
		if err := s.requests.RejectRequest(requestID, decidedBy); err != nil {
			if errors.Is(err, database.ErrRequestNotPending) {
				return nil, nil, fmt.Errorf("%w: request already decided", ErrConflict)
			}
			return nil, nil, err
		}
		req.Status = models.RequestStatusRejected

		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"decided_by": decidedBy,
		}).Info("Menu update request rejected")

		return req, nil, nil
	}

	item, err := s.requests.ApproveAndApply(req, decidedBy)
	if err != nil {
		if errors.Is(err, database.ErrRequestNotPending) {
			return nil, nil, fmt.Errorf("%w: request already decided", ErrConflict)
		}
		if errors.Is(err, database.ErrTargetItemMissing) {
			return nil, nil, fmt.Errorf("%w: target menu item was deleted", ErrConflict)
		}
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"decided_by": decidedBy,
		"item_id":    item.ID,
	}).Info("Menu update request approved and applied")

	return req, item, nil
}

// DeleteItem hard-deletes a menu item. Allowed for the owner of the
// item's hotel and for super admins.
func (s *ApprovalService) DeleteItem(role string, ownHotelID *uuid.UUID, itemID uuid.UUID) error {
	item, err := s.items.GetItemByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: menu item %s", ErrNotFound, itemID)
	}

	allowed := role == models.RoleSuperAdmin ||
		(role == models.RoleHotelOwner && ownHotelID != nil && *ownHotelID == item.HotelID)
	if !allowed {
		return fmt.Errorf("%w: item belongs to another hotel", ErrForbidden)
	}

	if err := s.items.DeleteItem(itemID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"item_id":  itemID,
		"hotel_id": item.HotelID,
	}).Info("Menu item deleted")

	return nil
}

// ListOwnItems returns all items of the owner's hotel, approved or not
func (s *ApprovalService) ListOwnItems(hotelID uuid.UUID) ([]*models.MenuItem, error) {
	return s.items.ListItemsByHotel(hotelID)
}

// PublicMenu returns the approved items of an active hotel for the
// QR-linked public menu. Inactive and unknown hotels are indistinguishable
// to the public.
func (s *ApprovalService) PublicMenu(hotelID uuid.UUID) (*models.Hotel, []*models.MenuItem, error) {
	hotel, err := s.hotels.GetHotelByID(hotelID)
	if err != nil {
		return nil, nil, err
	}
	if hotel == nil || !hotel.IsActive {
		return nil, nil, fmt.Errorf("%w: hotel %s", ErrNotFound, hotelID)
	}

	items, err := s.items.ListApprovedItemsByHotel(hotelID)
	if err != nil {
		return nil, nil, err
	}

	return hotel, items, nil
}
