package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/middleware"
	"github.com/menuqr/hotel-menu-backend/internal/services"
)

// MenuHandler serves the public QR menu and owner-facing item endpoints
type MenuHandler struct {
	approvals *services.ApprovalService
	logger    *logrus.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(approvals *services.ApprovalService, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{approvals: approvals, logger: logger}
}

// PublicMenu returns the approved menu of an active hotel. No auth:
// this is the endpoint QR codes point at. Inactive hotels 404 like
// unknown ones.
func (h *MenuHandler) PublicMenu(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Param("hotelId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_hotel_id",
			Message: "Hotel ID must be a valid UUID",
			Code:    "INVALID_HOTEL_ID",
		})
		return
	}

	hotel, items, err := h.approvals.PublicMenu(hotelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hotel": gin.H{
			"id":          hotel.ID,
			"name":        hotel.Name,
			"description": hotel.Description,
			"location":    hotel.Location,
			"contact":     hotel.Contact,
			"services":    hotel.Services,
		},
		"items": items,
	})
}

// ListOwnItems returns every item of the caller's hotel, including
// unapproved ones
func (h *MenuHandler) ListOwnItems(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok || user.HotelID == nil {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Account is not linked to a hotel",
			Code:    "NO_HOTEL",
		})
		return
	}

	items, err := h.approvals.ListOwnItems(*user.HotelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DeleteItem hard-deletes a menu item. Pending update requests that
// reference it surface a conflict at approval time instead of blocking
// the delete.
func (h *MenuHandler) DeleteItem(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
			Code:    "MISSING_USER_CONTEXT",
		})
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_item_id",
			Message: "Item ID must be a valid UUID",
			Code:    "INVALID_ITEM_ID",
		})
		return
	}

	if err := h.approvals.DeleteItem(user.Role, user.HotelID, itemID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
