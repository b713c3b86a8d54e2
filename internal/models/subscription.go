package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanType represents the billing period of a subscription
type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

// Plan durations
const (
	MonthlyDuration = 30 * 24 * time.Hour
	YearlyDuration  = 365 * 24 * time.Hour
)

// IsValid reports whether the plan type is one of the known plans
func (p PlanType) IsValid() bool {
	return p == PlanMonthly || p == PlanYearly
}

// Duration returns the billing period length for the plan
func (p PlanType) Duration() time.Duration {
	if p == PlanYearly {
		return YearlyDuration
	}
	return MonthlyDuration
}

// SubscriptionPaymentStatus represents the payment state of a subscription.
// Matches PostgreSQL ENUM: subscription_payment_status
type SubscriptionPaymentStatus string

const (
	PaymentStatusPending SubscriptionPaymentStatus = "pending"
	PaymentStatusPaid    SubscriptionPaymentStatus = "paid"
	PaymentStatusFailed  SubscriptionPaymentStatus = "failed"
)

// Subscription represents one billing period tied to a payment-gateway
// order. AmountPaise is integer minor units; RazorpayOrderID is the
// correlation key against the gateway and is unique.
type Subscription struct {
	ID                uuid.UUID                 `json:"id" db:"id"`
	HotelID           uuid.UUID                 `json:"hotel_id" db:"hotel_id"`
	PlanType          PlanType                  `json:"plan_type" db:"plan_type"`
	StartDate         time.Time                 `json:"start_date" db:"start_date"`
	EndDate           time.Time                 `json:"end_date" db:"end_date"`
	RazorpayOrderID   string                    `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID NullString                `json:"razorpay_payment_id,omitempty" db:"razorpay_payment_id"`
	AmountPaise       int64                     `json:"amount_paise" db:"amount_paise"`
	Currency          string                    `json:"currency" db:"currency"`
	PaymentStatus     SubscriptionPaymentStatus `json:"payment_status" db:"payment_status"`
	CreatedAt         time.Time                 `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at" db:"updated_at"`
}

// IsCurrentlyValid reports whether the subscription is paid and covers now
func (s *Subscription) IsCurrentlyValid(now time.Time) bool {
	return s.PaymentStatus == PaymentStatusPaid && !s.EndDate.Before(now)
}
