package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/menuqr/hotel-menu-backend/internal/cache"
	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/models"
	"github.com/menuqr/hotel-menu-backend/pkg/jwt"
	"github.com/menuqr/hotel-menu-backend/pkg/validator"
)

// AuthHandler handles registration, login and password reset
type AuthHandler struct {
	users      *database.UserRepository
	tokens     *cache.ResetTokenStore
	jwtService *jwt.Service
	phones     *validator.PhoneValidator
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	users *database.UserRepository,
	tokens *cache.ResetTokenStore,
	jwtService *jwt.Service,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		phones:     validator.NewPhoneValidator(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// RegisterRequest is the owner + hotel registration payload
type RegisterRequest struct {
	Email        string                 `json:"email" binding:"required,email"`
	Password     string                 `json:"password" binding:"required,min=8"`
	HotelName    string                 `json:"hotel_name" binding:"required"`
	Description  string                 `json:"description"`
	Location     string                 `json:"location"`
	ContactPhone string                 `json:"contact_phone"`
	ContactEmail string                 `json:"contact_email"`
	Services     map[string]interface{} `json:"services"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the access token and the authenticated identity
type AuthResponse struct {
	Token string        `json:"token"`
	User  *models.User  `json:"user"`
	Hotel *models.Hotel `json:"hotel,omitempty"`
}

// Register creates a hotel owner account together with its hotel. The
// hotel starts inactive until a subscription payment is verified.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	contact := models.JSONB{}
	if req.ContactPhone != "" {
		phone, err := h.phones.Validate(req.ContactPhone)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_phone",
				Message: err.Error(),
				Code:    "INVALID_PHONE",
			})
			return
		}
		contact["phone"] = phone
	}
	if req.ContactEmail != "" {
		contact["email"] = req.ContactEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process registration",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	hotel := &models.Hotel{
		Name:        req.HotelName,
		Description: models.NewNullString(req.Description),
		Location:    models.NewNullString(req.Location),
		Contact:     contact,
		Services:    models.JSONB(req.Services),
	}

	if err := h.users.CreateOwnerWithHotel(user, hotel); err != nil {
		if database.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "email_taken",
				Message: "An account with this email already exists",
				Code:    "EMAIL_TAKEN",
			})
			return
		}
		h.logger.WithError(err).Error("Registration failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process registration",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	token, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role, &hotel.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate token",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"hotel_id": hotel.ID,
	}).Info("Hotel owner registered")

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User:  user,
		Hotel: hotel,
	})
}

// Login authenticates a user and returns a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	user, err := h.users.GetUserByEmail(req.Email)
	if err != nil {
		h.logger.WithError(err).Error("Login lookup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process login",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	// Same response for unknown email and wrong password
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
			Code:    "INVALID_CREDENTIALS",
		})
		return
	}

	var hotelID *uuid.UUID
	if user.HotelID.Valid {
		hotelID = &user.HotelID.UUID
	}

	token, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role, hotelID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate token",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User logged in")

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// ForgotPasswordRequest is the forgot-password payload
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a single-use reset token. The response is the
// same whether or not the email exists, so accounts cannot be enumerated.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	user, err := h.users.GetUserByEmail(req.Email)
	if err != nil {
		h.logger.WithError(err).Error("Forgot password lookup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process request",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	if user != nil {
		token, err := h.tokens.Issue(c.Request.Context(), user.ID)
		if err != nil {
			h.logger.WithError(err).Error("Failed to issue reset token")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to process request",
				Code:    "INTERNAL_ERROR",
			})
			return
		}

		// TODO: deliver via the transactional mail provider once it is
		// provisioned; until then the token only reaches the logs.
		h.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"token":   token,
		}).Info("Password reset token issued")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If the email exists, a reset token has been issued",
	})
}

// ResetPasswordRequest is the reset-password payload
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ResetPassword redeems a reset token and replaces the user's password.
// Tokens are single-use; a second redeem fails.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	userID, err := h.tokens.Redeem(c.Request.Context(), req.Token)
	if err != nil {
		h.logger.WithError(err).Error("Failed to redeem reset token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process request",
			Code:    "INTERNAL_ERROR",
		})
		return
	}
	if userID == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_token",
			Message: "Reset token is invalid or expired",
			Code:    "INVALID_RESET_TOKEN",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.bcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process request",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	if err := h.users.UpdatePassword(*userID, string(hash)); err != nil {
		h.logger.WithError(err).Error("Failed to update password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process request",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	h.logger.WithField("user_id", userID).Info("Password reset completed")

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
