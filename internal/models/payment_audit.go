package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventOrderCreated     PaymentEventType = "order_created"
	PaymentEventOrderFailed      PaymentEventType = "order_creation_failed"
	PaymentEventVerifyAttempted  PaymentEventType = "verify_attempted"
	PaymentEventVerifyFailed     PaymentEventType = "verify_failed"
	PaymentEventVerifySucceeded  PaymentEventType = "verify_succeeded"
	PaymentEventSweepDeactivated PaymentEventType = "sweep_deactivated"
)

// PaymentEventSource identifies where the event originated
type PaymentEventSource string

const (
	PaymentSourceBackend     PaymentEventSource = "backend"
	PaymentSourceRazorpayAPI PaymentEventSource = "razorpay_api"
	PaymentSourceUser        PaymentEventSource = "user"
	PaymentSourceSystem      PaymentEventSource = "system"
)

// PaymentAudit represents an immutable audit log entry for payment events
type PaymentAudit struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	SubscriptionID  *uuid.UUID `json:"subscription_id,omitempty" db:"subscription_id"`
	HotelID         *uuid.UUID `json:"hotel_id,omitempty" db:"hotel_id"`
	RazorpayOrderID *string    `json:"razorpay_order_id,omitempty" db:"razorpay_order_id"`

	// Event info
	EventType   PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource PaymentEventSource `json:"event_source" db:"event_source"`

	// Amount tracking
	AmountPaise *int64  `json:"amount_paise,omitempty" db:"amount_paise"`
	Currency    *string `json:"currency,omitempty" db:"currency"`

	// Raw payloads for gateway debugging
	RequestPayload  JSONB `json:"request_payload,omitempty" db:"request_payload"`
	ResponsePayload JSONB `json:"response_payload,omitempty" db:"response_payload"`

	// Error tracking
	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	// Metadata
	IPAddress *string `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent *string `json:"user_agent,omitempty" db:"user_agent"`
	Device    *string `json:"device,omitempty" db:"device"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewPaymentAudit creates a new payment audit entry with required fields
func NewPaymentAudit(eventType PaymentEventType, source PaymentEventSource) *PaymentAudit {
	return &PaymentAudit{
		ID:          uuid.New(),
		EventType:   eventType,
		EventSource: source,
		CreatedAt:   time.Now(),
	}
}

// SetSubscription ties the audit row to a subscription and its hotel
func (pa *PaymentAudit) SetSubscription(subscriptionID, hotelID uuid.UUID) *PaymentAudit {
	pa.SubscriptionID = &subscriptionID
	pa.HotelID = &hotelID
	return pa
}

// SetHotel ties the audit row to a hotel only
func (pa *PaymentAudit) SetHotel(hotelID uuid.UUID) *PaymentAudit {
	pa.HotelID = &hotelID
	return pa
}

// SetOrder sets the gateway order reference
func (pa *PaymentAudit) SetOrder(orderID string) *PaymentAudit {
	pa.RazorpayOrderID = &orderID
	return pa
}

// SetAmount records the amount in minor units and its currency
func (pa *PaymentAudit) SetAmount(amountPaise int64, currency string) *PaymentAudit {
	pa.AmountPaise = &amountPaise
	pa.Currency = &currency
	return pa
}

// SetError sets error information
func (pa *PaymentAudit) SetError(message string) *PaymentAudit {
	pa.ErrorMessage = &message
	return pa
}

// SetRequestPayload sets the request payload sent
func (pa *PaymentAudit) SetRequestPayload(payload map[string]interface{}) *PaymentAudit {
	pa.RequestPayload = JSONB(payload)
	return pa
}

// SetResponsePayload sets the response payload received
func (pa *PaymentAudit) SetResponsePayload(payload map[string]interface{}) *PaymentAudit {
	pa.ResponsePayload = JSONB(payload)
	return pa
}

// SetMetadata sets request metadata
func (pa *PaymentAudit) SetMetadata(ip, userAgent, device string) *PaymentAudit {
	if ip != "" {
		pa.IPAddress = &ip
	}
	if userAgent != "" {
		pa.UserAgent = &userAgent
	}
	if device != "" {
		pa.Device = &device
	}
	return pa
}
