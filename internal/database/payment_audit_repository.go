package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/models"
)

// PaymentAuditRepository handles payment audit operations
type PaymentAuditRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewPaymentAuditRepository creates a new payment audit repository
func NewPaymentAuditRepository(db *sqlx.DB, logger *logrus.Logger) *PaymentAuditRepository {
	return &PaymentAuditRepository{
		db:     db,
		logger: logger,
	}
}

// Log creates a new payment audit entry
// This should NEVER fail silently - payment events must be logged
func (r *PaymentAuditRepository) Log(ctx context.Context, audit *models.PaymentAudit) error {
	if audit == nil {
		return fmt.Errorf("audit entry cannot be nil")
	}

	// Ensure ID and timestamp are set
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO payment_audits (
			id, subscription_id, hotel_id, razorpay_order_id,
			event_type, event_source,
			amount_paise, currency,
			request_payload, response_payload,
			error_message,
			ip_address, user_agent, device,
			created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6,
			$7, $8,
			$9, $10,
			$11,
			$12, $13, $14,
			$15
		)`

	_, err := r.db.ExecContext(ctx, query,
		audit.ID, audit.SubscriptionID, audit.HotelID, audit.RazorpayOrderID,
		audit.EventType, audit.EventSource,
		audit.AmountPaise, audit.Currency,
		audit.RequestPayload, audit.ResponsePayload,
		audit.ErrorMessage,
		audit.IPAddress, audit.UserAgent, audit.Device,
		audit.CreatedAt,
	)
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"event_type": audit.EventType,
			"order_id":   audit.RazorpayOrderID,
		}).Error("CRITICAL: Failed to log payment audit - THIS SHOULD NEVER HAPPEN")
		return fmt.Errorf("failed to log payment audit: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"audit_id":   audit.ID,
		"event_type": audit.EventType,
		"order_id":   audit.RazorpayOrderID,
	}).Debug("Payment audit logged")

	return nil
}

// GetByOrderID retrieves all audit entries for a gateway order
func (r *PaymentAuditRepository) GetByOrderID(ctx context.Context, orderID string) ([]*models.PaymentAudit, error) {
	var audits []*models.PaymentAudit
	query := `
		SELECT * FROM payment_audits
		WHERE razorpay_order_id = $1
		ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &audits, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audits by order ID: %w", err)
	}

	return audits, nil
}

// GetByHotelID retrieves recent audit entries for a hotel
func (r *PaymentAuditRepository) GetByHotelID(ctx context.Context, hotelID uuid.UUID, limit int) ([]*models.PaymentAudit, error) {
	var audits []*models.PaymentAudit
	query := `
		SELECT * FROM payment_audits
		WHERE hotel_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &audits, query, hotelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audits by hotel ID: %w", err)
	}

	return audits, nil
}

// GetVerificationFailures retrieves recent failed verification attempts
// for operator review
func (r *PaymentAuditRepository) GetVerificationFailures(ctx context.Context, limit int) ([]*models.PaymentAudit, error) {
	var audits []*models.PaymentAudit
	query := `
		SELECT * FROM payment_audits
		WHERE event_type = $1
		ORDER BY created_at DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &audits, query, models.PaymentEventVerifyFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get verification failures: %w", err)
	}

	return audits, nil
}
