package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/menuqr/hotel-menu-backend/internal/models"
)

// ErrSubscriptionNotPending is returned when a payment-state transition
// targets a subscription that is not in the pending state
var ErrSubscriptionNotPending = errors.New("subscription is not pending")

// SubscriptionRepository handles subscription database operations
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreateSubscription persists a pending subscription keyed by the
// gateway order ID
func (r *SubscriptionRepository) CreateSubscription(sub *models.Subscription) error {
	sub.ID = uuid.New()
	sub.PaymentStatus = models.PaymentStatusPending
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt

	query := `
		INSERT INTO subscriptions (id, hotel_id, plan_type, start_date, end_date,
		                           razorpay_order_id, amount_paise, currency, payment_status,
		                           created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(query,
		sub.ID, sub.HotelID, sub.PlanType, sub.StartDate, sub.EndDate,
		sub.RazorpayOrderID, sub.AmountPaise, sub.Currency, sub.PaymentStatus,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetSubscriptionByOrderID retrieves a subscription by its gateway order ID
func (r *SubscriptionRepository) GetSubscriptionByOrderID(orderID string) (*models.Subscription, error) {
	var sub models.Subscription

	query := `
		SELECT id, hotel_id, plan_type, start_date, end_date, razorpay_order_id,
		       razorpay_payment_id, amount_paise, currency, payment_status,
		       created_at, updated_at
		FROM subscriptions
		WHERE razorpay_order_id = $1
	`

	err := r.db.Get(&sub, query, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Subscription not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get subscription by order ID: %w", err)
	}

	return &sub, nil
}

// ListSubscriptionsByHotel retrieves a hotel's subscriptions, newest first
func (r *SubscriptionRepository) ListSubscriptionsByHotel(hotelID uuid.UUID) ([]*models.Subscription, error) {
	var subs []*models.Subscription

	query := `
		SELECT id, hotel_id, plan_type, start_date, end_date, razorpay_order_id,
		       razorpay_payment_id, amount_paise, currency, payment_status,
		       created_at, updated_at
		FROM subscriptions
		WHERE hotel_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&subs, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return subs, nil
}

// GetActiveSubscription returns the paid subscription covering now with
// the latest end date, or nil when the hotel has no current coverage
func (r *SubscriptionRepository) GetActiveSubscription(hotelID uuid.UUID, now time.Time) (*models.Subscription, error) {
	var sub models.Subscription

	query := `
		SELECT id, hotel_id, plan_type, start_date, end_date, razorpay_order_id,
		       razorpay_payment_id, amount_paise, currency, payment_status,
		       created_at, updated_at
		FROM subscriptions
		WHERE hotel_id = $1
		  AND payment_status = $2
		  AND end_date >= $3
		ORDER BY end_date DESC
		LIMIT 1
	`

	err := r.db.Get(&sub, query, hotelID, models.PaymentStatusPaid, now)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No active subscription
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return &sub, nil
}

// GetLatestPaidEndDate returns the furthest end date among the hotel's
// paid subscriptions, for stacking renewals on top of remaining coverage.
// Returns nil when the hotel has never paid.
func (r *SubscriptionRepository) GetLatestPaidEndDate(hotelID uuid.UUID) (*time.Time, error) {
	var endDate sql.NullTime

	query := `
		SELECT MAX(end_date)
		FROM subscriptions
		WHERE hotel_id = $1
		  AND payment_status = $2
	`

	err := r.db.QueryRow(query, hotelID, models.PaymentStatusPaid).Scan(&endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest paid end date: %w", err)
	}

	if !endDate.Valid {
		return nil, nil
	}
	return &endDate.Time, nil
}

// MarkFailed records a definitive signature mismatch against a pending
// subscription. Returns ErrSubscriptionNotPending when the subscription
// has already reached a terminal payment state.
func (r *SubscriptionRepository) MarkFailed(orderID string) error {
	query := `
		UPDATE subscriptions
		SET payment_status = $1,
		    updated_at = $2
		WHERE razorpay_order_id = $3
		  AND payment_status = $4
	`

	result, err := r.db.Exec(query,
		models.PaymentStatusFailed, time.Now(), orderID, models.PaymentStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark subscription failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSubscriptionNotPending
	}

	return nil
}

// MarkPaidAndActivateHotel transitions a pending subscription to paid and
// activates its hotel, atomically. The hotel's recorded end date is set to
// the subscription's end date. Returns ErrSubscriptionNotPending when the
// subscription is not pending (verify of an already-paid order is handled
// by the caller before reaching here).
func (r *SubscriptionRepository) MarkPaidAndActivateHotel(orderID, paymentID string) error {
	now := time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var hotelID uuid.UUID
	var endDate time.Time

	paidQuery := `
		UPDATE subscriptions
		SET payment_status = $1,
		    razorpay_payment_id = $2,
		    updated_at = $3
		WHERE razorpay_order_id = $4
		  AND payment_status = $5
		RETURNING hotel_id, end_date
	`
	err = tx.QueryRow(paidQuery,
		models.PaymentStatusPaid, paymentID, now, orderID, models.PaymentStatusPending,
	).Scan(&hotelID, &endDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrSubscriptionNotPending
		}
		return fmt.Errorf("failed to mark subscription paid: %w", err)
	}

	activateQuery := `
		UPDATE hotels
		SET is_active = TRUE,
		    subscription_end_date = $1,
		    updated_at = $2
		WHERE id = $3
	`
	if _, err := tx.Exec(activateQuery, endDate, now, hotelID); err != nil {
		return fmt.Errorf("failed to activate hotel: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment activation: %w", err)
	}

	return nil
}
