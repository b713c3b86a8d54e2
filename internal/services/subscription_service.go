package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/menuqr/hotel-menu-backend/internal/config"
	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/models"
	"github.com/menuqr/hotel-menu-backend/pkg/razorpay"
)

// CreateOrderResult is returned to the client to launch Razorpay Checkout
type CreateOrderResult struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	OrderID        string    `json:"order_id"`
	AmountPaise    int64     `json:"amount_paise"`
	Currency       string    `json:"currency"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// SubscriptionService implements the subscription payment lifecycle:
// order creation against the gateway, signature verification, and the
// resulting hotel activation.
type SubscriptionService struct {
	subs     *database.SubscriptionRepository
	hotels   *database.HotelRepository
	gateway  razorpay.Gateway
	audit    *AuditService
	plans    config.SubscriptionConfig
	currency string
	logger   *logrus.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	subs *database.SubscriptionRepository,
	hotels *database.HotelRepository,
	gateway razorpay.Gateway,
	audit *AuditService,
	plans config.SubscriptionConfig,
	currency string,
	logger *logrus.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subs:     subs,
		hotels:   hotels,
		gateway:  gateway,
		audit:    audit,
		plans:    plans,
		currency: currency,
		logger:   logger,
	}
}

// planAmount returns the configured price for a plan in paise
func (s *SubscriptionService) planAmount(plan models.PlanType) int64 {
	if plan == models.PlanYearly {
		return s.plans.YearlyAmountPaise
	}
	return s.plans.MonthlyAmountPaise
}

// CreatePaymentOrder creates a gateway order and a pending subscription
// for the hotel. Renewals stack: the new period starts at the later of
// now and the furthest paid end date, so remaining coverage is never lost.
func (s *SubscriptionService) CreatePaymentOrder(ctx context.Context, hotelID uuid.UUID, plan models.PlanType, meta RequestMeta) (*CreateOrderResult, error) {
	if !plan.IsValid() {
		return nil, fmt.Errorf("%w: unknown plan type %q", ErrValidation, plan)
	}

	hotel, err := s.hotels.GetHotelByID(hotelID)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, fmt.Errorf("%w: hotel %s", ErrNotFound, hotelID)
	}

	amount := s.planAmount(plan)

	startDate := time.Now()
	latestEnd, err := s.subs.GetLatestPaidEndDate(hotelID)
	if err != nil {
		return nil, err
	}
	if latestEnd != nil && latestEnd.After(startDate) {
		startDate = *latestEnd
	}
	endDate := startDate.Add(plan.Duration())

	sub := &models.Subscription{
		HotelID:     hotelID,
		PlanType:    plan,
		StartDate:   startDate,
		EndDate:     endDate,
		AmountPaise: amount,
		Currency:    s.currency,
	}

	order, err := s.gateway.CreateOrder(amount, s.currency, "hotel_"+hotelID.String())
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"hotel_id": hotelID,
			"plan":     plan,
		}).Error("Gateway order creation failed")

		s.audit.Record(ctx, models.NewPaymentAudit(models.PaymentEventOrderFailed, models.PaymentSourceRazorpayAPI).
			SetHotel(hotelID).
			SetAmount(amount, s.currency).
			SetError(err.Error()), meta)

		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	sub.RazorpayOrderID = order.ID
	if err := s.subs.CreateSubscription(sub); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, models.NewPaymentAudit(models.PaymentEventOrderCreated, models.PaymentSourceBackend).
		SetSubscription(sub.ID, hotelID).
		SetOrder(order.ID).
		SetAmount(amount, s.currency).
		SetResponsePayload(map[string]interface{}{
			"order_id": order.ID,
			"status":   order.Status,
		}), meta)

	s.logger.WithFields(logrus.Fields{
		"subscription_id": sub.ID,
		"hotel_id":        hotelID,
		"order_id":        order.ID,
		"plan":            plan,
		"amount_paise":    amount,
	}).Info("Payment order created")

	return &CreateOrderResult{
		SubscriptionID: sub.ID,
		OrderID:        order.ID,
		AmountPaise:    amount,
		Currency:       s.currency,
		StartDate:      startDate,
		EndDate:        endDate,
	}, nil
}

// VerifyPayment checks the signature returned by Razorpay Checkout. A
// valid signature marks the subscription paid and activates the hotel in
// one transaction; a mismatch marks the subscription failed. Verifying an
// already-paid subscription is idempotent.
func (s *SubscriptionService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string, meta RequestMeta) (*models.Subscription, error) {
	sub, err := s.subs.GetSubscriptionByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	s.audit.Record(ctx, models.NewPaymentAudit(models.PaymentEventVerifyAttempted, models.PaymentSourceUser).
		SetSubscription(sub.ID, sub.HotelID).
		SetOrder(orderID), meta)

	// Re-verifying a settled payment changes nothing
	if sub.PaymentStatus == models.PaymentStatusPaid {
		return sub, nil
	}
	if sub.PaymentStatus == models.PaymentStatusFailed {
		return nil, fmt.Errorf("%w: payment already failed verification", ErrConflict)
	}

	if !s.gateway.VerifyPaymentSignature(orderID, paymentID, signature) {
		if err := s.subs.MarkFailed(orderID); err != nil && !errors.Is(err, database.ErrSubscriptionNotPending) {
			return nil, err
		}

		s.audit.Record(ctx, models.NewPaymentAudit(models.PaymentEventVerifyFailed, models.PaymentSourceUser).
			SetSubscription(sub.ID, sub.HotelID).
			SetOrder(orderID).
			SetError("signature mismatch").
			SetRequestPayload(map[string]interface{}{
				"payment_id": paymentID,
			}), meta)

		s.logger.WithFields(logrus.Fields{
			"order_id":   orderID,
			"payment_id": paymentID,
			"hotel_id":   sub.HotelID,
		}).Warn("Payment signature verification failed")

		return nil, fmt.Errorf("%w: order %s", ErrInvalidSignature, orderID)
	}

	if err := s.subs.MarkPaidAndActivateHotel(orderID, paymentID); err != nil {
		if errors.Is(err, database.ErrSubscriptionNotPending) {
			// Lost a race against a concurrent verify; report the settled state
			settled, getErr := s.subs.GetSubscriptionByOrderID(orderID)
			if getErr == nil && settled != nil && settled.PaymentStatus == models.PaymentStatusPaid {
				return settled, nil
			}
			return nil, fmt.Errorf("%w: subscription no longer pending", ErrConflict)
		}
		return nil, err
	}

	s.audit.Record(ctx, models.NewPaymentAudit(models.PaymentEventVerifySucceeded, models.PaymentSourceBackend).
		SetSubscription(sub.ID, sub.HotelID).
		SetOrder(orderID).
		SetAmount(sub.AmountPaise, sub.Currency), meta)

	s.logger.WithFields(logrus.Fields{
		"order_id":        orderID,
		"payment_id":      paymentID,
		"subscription_id": sub.ID,
		"hotel_id":        sub.HotelID,
	}).Info("Payment verified, hotel activated")

	sub.PaymentStatus = models.PaymentStatusPaid
	sub.RazorpayPaymentID = models.NewNullString(paymentID)

	return sub, nil
}

// GetActiveSubscription returns the paid subscription currently covering
// the hotel, or ErrNotFound when there is none
func (s *SubscriptionService) GetActiveSubscription(hotelID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.subs.GetActiveSubscription(hotelID, time.Now())
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: no active subscription for hotel %s", ErrNotFound, hotelID)
	}
	return sub, nil
}

// ListSubscriptions returns the hotel's full subscription history
func (s *SubscriptionService) ListSubscriptions(hotelID uuid.UUID) ([]*models.Subscription, error) {
	return s.subs.ListSubscriptionsByHotel(hotelID)
}
