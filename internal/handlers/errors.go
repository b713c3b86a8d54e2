package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/menuqr/hotel-menu-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondServiceError maps service sentinel errors onto HTTP responses.
// Unrecognized errors become an opaque 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    "VALIDATION_FAILED",
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Code:    "NOT_FOUND",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
			Code:    "FORBIDDEN",
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
			Code:    "CONFLICT",
		})
	case errors.Is(err, services.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_signature",
			Message: "Payment signature verification failed",
			Code:    "INVALID_SIGNATURE",
		})
	case errors.Is(err, services.ErrUpstream):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "payment_failed",
			Message: "Payment gateway request failed. Please try again later.",
			Code:    "GATEWAY_ERROR",
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
			Code:    "INTERNAL_ERROR",
		})
	}
}
