package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuqr/hotel-menu-backend/internal/config"
	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/models"
	"github.com/menuqr/hotel-menu-backend/pkg/razorpay"
)

// stubGateway is a canned-response Gateway for service tests
type stubGateway struct {
	order          *razorpay.Order
	err            error
	validSignature bool
}

func (g *stubGateway) CreateOrder(amountPaise int64, currency, receipt string) (*razorpay.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	order := *g.order
	order.AmountPaise = amountPaise
	order.Currency = currency
	order.Receipt = receipt
	return &order, nil
}

func (g *stubGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return g.validSignature
}

func (g *stubGateway) GetName() string { return "stub" }

var testPlans = config.SubscriptionConfig{
	MonthlyAmountPaise: 10000,
	YearlyAmountPaise:  100000,
	SweepInterval:      24 * time.Hour,
}

func newSubscriptionService(t *testing.T, gateway razorpay.Gateway) (*SubscriptionService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	logger := testLogger()
	// Audit disabled in unit tests: no audit table expectations needed
	audit := NewAuditService(database.NewPaymentAuditRepository(sqlxDB, logger), logger, false)

	svc := NewSubscriptionService(
		database.NewSubscriptionRepository(sqlxDB),
		database.NewHotelRepository(sqlxDB),
		gateway,
		audit,
		testPlans,
		"INR",
		logger,
	)
	return svc, mock
}

var subscriptionColumns = []string{
	"id", "hotel_id", "plan_type", "start_date", "end_date", "razorpay_order_id",
	"razorpay_payment_id", "amount_paise", "currency", "payment_status",
	"created_at", "updated_at",
}

func expectHotelLookup(mock sqlmock.Sqlmock, hotelID uuid.UUID) {
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM hotels`).
		WithArgs(hotelID).
		WillReturnRows(sqlmock.NewRows(hotelColumns).AddRow(
			hotelID, uuid.New(), "Grand Palace", nil, nil, nil, nil,
			false, nil, now, now))
}

func TestCreatePaymentOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Monthly Order", func(t *testing.T) {
		gateway := &stubGateway{order: &razorpay.Order{ID: "order_N8xF2abc", Status: "created"}}
		svc, mock := newSubscriptionService(t, gateway)
		hotelID := uuid.New()

		expectHotelLookup(mock, hotelID)
		mock.ExpectQuery(`SELECT MAX\(end_date\) FROM subscriptions`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
		mock.ExpectExec(`INSERT INTO subscriptions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		result, err := svc.CreatePaymentOrder(ctx, hotelID, models.PlanMonthly, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, "order_N8xF2abc", result.OrderID)
		assert.Equal(t, int64(10000), result.AmountPaise)
		assert.Equal(t, "INR", result.Currency)
		assert.WithinDuration(t, time.Now(), result.StartDate, 2*time.Second)
		assert.WithinDuration(t, result.StartDate.Add(models.MonthlyDuration), result.EndDate, time.Second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Renewal Stacks On Remaining Coverage", func(t *testing.T) {
		gateway := &stubGateway{order: &razorpay.Order{ID: "order_next", Status: "created"}}
		svc, mock := newSubscriptionService(t, gateway)
		hotelID := uuid.New()
		futureEnd := time.Now().Add(10 * 24 * time.Hour)

		expectHotelLookup(mock, hotelID)
		mock.ExpectQuery(`SELECT MAX\(end_date\) FROM subscriptions`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(futureEnd))
		mock.ExpectExec(`INSERT INTO subscriptions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		result, err := svc.CreatePaymentOrder(ctx, hotelID, models.PlanYearly, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, int64(100000), result.AmountPaise)
		assert.WithinDuration(t, futureEnd, result.StartDate, time.Second)
		assert.WithinDuration(t, futureEnd.Add(models.YearlyDuration), result.EndDate, time.Second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Plan", func(t *testing.T) {
		svc, _ := newSubscriptionService(t, &stubGateway{})

		_, err := svc.CreatePaymentOrder(ctx, uuid.New(), "weekly", RequestMeta{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Hotel Not Found", func(t *testing.T) {
		svc, mock := newSubscriptionService(t, &stubGateway{})
		hotelID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM hotels`).
			WithArgs(hotelID).
			WillReturnRows(sqlmock.NewRows(hotelColumns))

		_, err := svc.CreatePaymentOrder(ctx, hotelID, models.PlanMonthly, RequestMeta{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Gateway Failure", func(t *testing.T) {
		gateway := &stubGateway{err: fmt.Errorf("gateway timeout")}
		svc, mock := newSubscriptionService(t, gateway)
		hotelID := uuid.New()

		expectHotelLookup(mock, hotelID)
		mock.ExpectQuery(`SELECT MAX\(end_date\) FROM subscriptions`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		_, err := svc.CreatePaymentOrder(ctx, hotelID, models.PlanMonthly, RequestMeta{})
		assert.ErrorIs(t, err, ErrUpstream)
	})
}

func TestVerifyPayment(t *testing.T) {
	ctx := context.Background()

	pendingRow := func(orderID string, hotelID uuid.UUID) *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows(subscriptionColumns).AddRow(
			uuid.New(), hotelID, models.PlanMonthly, now, now.Add(models.MonthlyDuration),
			orderID, nil, int64(10000), "INR", models.PaymentStatusPending, now, now)
	}

	t.Run("Correct Signature Activates Hotel", func(t *testing.T) {
		svc, mock := newSubscriptionService(t, &stubGateway{validSignature: true})
		hotelID := uuid.New()
		endDate := time.Now().Add(models.MonthlyDuration)

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE razorpay_order_id`).
			WithArgs("order_N8xF2abc").
			WillReturnRows(pendingRow("order_N8xF2abc", hotelID))

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE subscriptions`).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "end_date"}).
				AddRow(hotelID, endDate))
		mock.ExpectExec(`UPDATE hotels`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		sub, err := svc.VerifyPayment(ctx, "order_N8xF2abc", "pay_M9yG3def", "sig", RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, sub.PaymentStatus)
		assert.Equal(t, "pay_M9yG3def", sub.RazorpayPaymentID.String)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Tampered Signature Marks Failed", func(t *testing.T) {
		svc, mock := newSubscriptionService(t, &stubGateway{validSignature: false})
		hotelID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE razorpay_order_id`).
			WithArgs("order_N8xF2abc").
			WillReturnRows(pendingRow("order_N8xF2abc", hotelID))

		mock.ExpectExec(`UPDATE subscriptions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		sub, err := svc.VerifyPayment(ctx, "order_N8xF2abc", "pay_M9yG3def", "bad-sig", RequestMeta{})
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.Nil(t, sub)

		// No hotel activation happened
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Paid Is Idempotent", func(t *testing.T) {
		svc, mock := newSubscriptionService(t, &stubGateway{validSignature: true})
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE razorpay_order_id`).
			WithArgs("order_N8xF2abc").
			WillReturnRows(sqlmock.NewRows(subscriptionColumns).AddRow(
				uuid.New(), uuid.New(), models.PlanMonthly, now, now.Add(models.MonthlyDuration),
				"order_N8xF2abc", "pay_M9yG3def", int64(10000), "INR",
				models.PaymentStatusPaid, now, now))

		sub, err := svc.VerifyPayment(ctx, "order_N8xF2abc", "pay_M9yG3def", "sig", RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, sub.PaymentStatus)

		// No further writes expected
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Failed Is Terminal", func(t *testing.T) {
		svc, mock := newSubscriptionService(t, &stubGateway{validSignature: true})
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE razorpay_order_id`).
			WithArgs("order_N8xF2abc").
			WillReturnRows(sqlmock.NewRows(subscriptionColumns).AddRow(
				uuid.New(), uuid.New(), models.PlanMonthly, now, now.Add(models.MonthlyDuration),
				"order_N8xF2abc", nil, int64(10000), "INR",
				models.PaymentStatusFailed, now, now))

		_, err := svc.VerifyPayment(ctx, "order_N8xF2abc", "pay_M9yG3def", "sig", RequestMeta{})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("Unknown Order", func(t *testing.T) {
		svc, mock := newSubscriptionService(t, &stubGateway{validSignature: true})

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE razorpay_order_id`).
			WithArgs("order_unknown").
			WillReturnRows(sqlmock.NewRows(subscriptionColumns))

		_, err := svc.VerifyPayment(ctx, "order_unknown", "pay_x", "sig", RequestMeta{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
