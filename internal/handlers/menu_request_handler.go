package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/middleware"
	"github.com/menuqr/hotel-menu-backend/internal/models"
	"github.com/menuqr/hotel-menu-backend/internal/services"
)

// MenuRequestHandler handles the menu update request workflow endpoints
type MenuRequestHandler struct {
	approvals *services.ApprovalService
	logger    *logrus.Logger
}

// NewMenuRequestHandler creates a new menu request handler
func NewMenuRequestHandler(approvals *services.ApprovalService, logger *logrus.Logger) *MenuRequestHandler {
	return &MenuRequestHandler{approvals: approvals, logger: logger}
}

// SubmitRequestBody is the update request submission payload. A nil
// menu_item_id proposes a new item.
type SubmitRequestBody struct {
	MenuItemID *uuid.UUID             `json:"menu_item_id"`
	Changes    models.MenuItemChanges `json:"changes" binding:"required"`
}

// DecideRequestBody carries the super admin's decision
type DecideRequestBody struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// Submit creates a pending update request for the caller's hotel
func (h *MenuRequestHandler) Submit(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok || user.HotelID == nil {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Account is not linked to a hotel",
			Code:    "NO_HOTEL",
		})
		return
	}

	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	req, err := h.approvals.SubmitRequest(*user.HotelID, body.MenuItemID, body.Changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// List returns update requests visible to the caller. Super admins see
// every hotel's requests, owners only their own. Filter with ?status=.
func (h *MenuRequestHandler) List(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
			Code:    "MISSING_USER_CONTEXT",
		})
		return
	}

	var status *models.MenuUpdateRequestStatus
	if raw := c.Query("status"); raw != "" {
		s := models.MenuUpdateRequestStatus(raw)
		if s != models.RequestStatusPending && s != models.RequestStatusApproved && s != models.RequestStatusRejected {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_status",
				Message: "Status must be pending, approved or rejected",
				Code:    "INVALID_STATUS",
			})
			return
		}
		status = &s
	}

	requests, err := h.approvals.ListRequests(user.Role, user.HotelID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// Decide approves or rejects a pending request. Approval applies the
// requested changes to the menu in the same transaction and returns the
// affected item.
func (h *MenuRequestHandler) Decide(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
			Code:    "MISSING_USER_CONTEXT",
		})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request_id",
			Message: "Request ID must be a valid UUID",
			Code:    "INVALID_REQUEST_ID",
		})
		return
	}

	var body DecideRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Action must be approve or reject",
			Code:    "INVALID_ACTION",
		})
		return
	}

	req, item, err := h.approvals.DecideRequest(requestID, body.Action == "approve", user.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := gin.H{"request": req}
	if item != nil {
		resp["item"] = item
	}
	c.JSON(http.StatusOK, resp)
}
