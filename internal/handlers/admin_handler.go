package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/services"
)

// AdminHandler exposes super admin platform operations
type AdminHandler struct {
	hotels *database.HotelRepository
	expiry *services.ExpiryService
	logger *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(hotels *database.HotelRepository, expiry *services.ExpiryService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{hotels: hotels, expiry: expiry, logger: logger}
}

// ListHotels returns all hotels on the platform, paginated
func (h *AdminHandler) ListHotels(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	hotels, err := h.hotels.ListHotels(limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list hotels")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list hotels",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hotels": hotels,
		"count":  len(hotels),
		"limit":  limit,
		"offset": offset,
	})
}

// RunSweep triggers the expiry sweep immediately instead of waiting for
// the next scheduled run
func (h *AdminHandler) RunSweep(c *gin.Context) {
	deactivated := h.expiry.RunOnce()

	h.logger.WithField("deactivated", deactivated).Info("Manual expiry sweep completed")

	c.JSON(http.StatusOK, gin.H{
		"message":     "Expiry sweep completed",
		"deactivated": deactivated,
	})
}
