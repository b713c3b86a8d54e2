package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/middleware"
	"github.com/menuqr/hotel-menu-backend/internal/models"
	"github.com/menuqr/hotel-menu-backend/internal/services"
	"github.com/menuqr/hotel-menu-backend/internal/utils"
)

// SubscriptionHandler handles payment order creation, verification and
// subscription queries
type SubscriptionHandler struct {
	subscriptions *services.SubscriptionService
	logger        *logrus.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions *services.SubscriptionService, logger *logrus.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, logger: logger}
}

// CreatePaymentRequest is the order creation payload
type CreatePaymentRequest struct {
	PlanType models.PlanType `json:"plan_type" binding:"required"`
}

// VerifyPaymentRequest carries the fields Razorpay Checkout hands back
// to the frontend after payment
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IP:        utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

// CreatePayment creates a Razorpay order and a pending subscription for
// the caller's hotel
func (h *SubscriptionHandler) CreatePayment(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok || user.HotelID == nil {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Account is not linked to a hotel",
			Code:    "NO_HOTEL",
		})
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	result, err := h.subscriptions.CreatePaymentOrder(c.Request.Context(), *user.HotelID, req.PlanType, requestMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// VerifyPayment verifies the checkout signature. Success activates the
// hotel; a bad signature marks the payment failed.
func (h *SubscriptionHandler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	sub, err := h.subscriptions.VerifyPayment(
		c.Request.Context(),
		req.RazorpayOrderID,
		req.RazorpayPaymentID,
		req.RazorpaySignature,
		requestMeta(c),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Payment verified",
		"subscription": sub,
	})
}

// hotelScope resolves the :hotelId param and checks the caller may see
// that hotel's subscriptions
func hotelScope(c *gin.Context) (uuid.UUID, bool) {
	hotelID, err := uuid.Parse(c.Param("hotelId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_hotel_id",
			Message: "Hotel ID must be a valid UUID",
			Code:    "INVALID_HOTEL_ID",
		})
		return uuid.Nil, false
	}

	user, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
			Code:    "MISSING_USER_CONTEXT",
		})
		return uuid.Nil, false
	}

	if user.Role != models.RoleSuperAdmin {
		if user.HotelID == nil || *user.HotelID != hotelID {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Cannot access another hotel's subscriptions",
				Code:    "FORBIDDEN",
			})
			return uuid.Nil, false
		}
	}

	return hotelID, true
}

// GetActive returns the paid subscription currently covering the hotel
func (h *SubscriptionHandler) GetActive(c *gin.Context) {
	hotelID, ok := hotelScope(c)
	if !ok {
		return
	}

	sub, err := h.subscriptions.GetActiveSubscription(hotelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// List returns the hotel's full subscription history, newest first
func (h *SubscriptionHandler) List(c *gin.Context) {
	hotelID, ok := hotelScope(c)
	if !ok {
		return
	}

	subs, err := h.subscriptions.ListSubscriptions(hotelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": subs,
		"count":         len(subs),
	})
}
