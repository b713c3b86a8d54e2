package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/menuqr/hotel-menu-backend/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateOwnerWithHotel registers a hotel owner and their hotel in a
// single transaction. The hotel starts inactive; activation happens only
// through a verified payment. Returns the created user and hotel.
func (r *UserRepository) CreateOwnerWithHotel(user *models.User, hotel *models.Hotel) error {
	now := time.Now()

	user.ID = uuid.New()
	user.Role = models.RoleHotelOwner
	user.CreatedAt = now
	user.UpdatedAt = now

	hotel.ID = uuid.New()
	hotel.OwnerUserID = user.ID
	hotel.IsActive = false
	hotel.CreatedAt = now
	hotel.UpdatedAt = now

	user.HotelID = uuid.NullUUID{UUID: hotel.ID, Valid: true}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userQuery := `
		INSERT INTO users (id, email, password_hash, role, hotel_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $6)
	`
	if _, err := tx.Exec(userQuery,
		user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	hotelQuery := `
		INSERT INTO hotels (id, owner_user_id, name, description, location, contact, services,
		                    is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := tx.Exec(hotelQuery,
		hotel.ID, hotel.OwnerUserID, hotel.Name, hotel.Description, hotel.Location,
		hotel.Contact, hotel.Services, hotel.IsActive, hotel.CreatedAt, hotel.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}

	linkQuery := `UPDATE users SET hotel_id = $1 WHERE id = $2`
	if _, err := tx.Exec(linkQuery, hotel.ID, user.ID); err != nil {
		return fmt.Errorf("failed to link owner to hotel: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}

	return nil
}

// CreateSuperAdmin creates a platform operator account
func (r *UserRepository) CreateSuperAdmin(email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleSuperAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (id, email, password_hash, role, hotel_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $6)
	`
	if _, err := r.db.Exec(query,
		user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create super admin: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, email, password_hash, role, hotel_id, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, email, password_hash, role, hotel_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// UpdatePassword replaces the stored bcrypt hash for a user
func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1,
		    updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
