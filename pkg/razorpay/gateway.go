// Package razorpay implements the minimal Razorpay Orders API surface
// needed for subscription billing: order creation and payment signature
// verification.
package razorpay

// Gateway defines the interface for the payment gateway
type Gateway interface {
	// CreateOrder creates a gateway order for the given amount in paise.
	// The returned order ID is the correlation key for later verification.
	CreateOrder(amountPaise int64, currency, receipt string) (*Order, error)

	// VerifyPaymentSignature checks the HMAC signature Razorpay Checkout
	// returns after a payment. Returns true only for an exact match.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool

	// GetName returns the name of the gateway implementation
	GetName() string
}

// Order represents a created gateway order
type Order struct {
	ID          string `json:"id"`
	Entity      string `json:"entity"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
}
