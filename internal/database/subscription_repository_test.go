package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuqr/hotel-menu-backend/internal/models"
)

func TestCreateSubscription(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewSubscriptionRepository(sqlxDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		sub := &models.Subscription{
			HotelID:         uuid.New(),
			PlanType:        models.PlanMonthly,
			StartDate:       now,
			EndDate:         now.Add(models.MonthlyDuration),
			RazorpayOrderID: "order_N8xF2abc",
			AmountPaise:     10000,
			Currency:        "INR",
		}

		mock.ExpectExec(`INSERT INTO subscriptions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.CreateSubscription(sub)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, sub.ID)
		assert.Equal(t, models.PaymentStatusPending, sub.PaymentStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Order ID", func(t *testing.T) {
		sub := &models.Subscription{
			HotelID:         uuid.New(),
			PlanType:        models.PlanMonthly,
			RazorpayOrderID: "order_N8xF2abc",
		}

		mock.ExpectExec(`INSERT INTO subscriptions`).
			WillReturnError(fmt.Errorf("duplicate key value violates unique constraint"))

		err := repo.CreateSubscription(sub)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create subscription")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetSubscriptionByOrderID(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewSubscriptionRepository(sqlxDB)

	columns := []string{
		"id", "hotel_id", "plan_type", "start_date", "end_date", "razorpay_order_id",
		"razorpay_payment_id", "amount_paise", "currency", "payment_status",
		"created_at", "updated_at",
	}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		orderID := "order_N8xF2abc"

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE razorpay_order_id`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				uuid.New(), uuid.New(), models.PlanMonthly, now, now.Add(models.MonthlyDuration),
				orderID, nil, int64(10000), "INR", models.PaymentStatusPending, now, now,
			))

		sub, err := repo.GetSubscriptionByOrderID(orderID)
		require.NoError(t, err)
		require.NotNil(t, sub)
		assert.Equal(t, orderID, sub.RazorpayOrderID)
		assert.Equal(t, models.PaymentStatusPending, sub.PaymentStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE razorpay_order_id`).
			WithArgs("order_unknown").
			WillReturnRows(sqlmock.NewRows(columns))

		sub, err := repo.GetSubscriptionByOrderID("order_unknown")
		require.NoError(t, err)
		assert.Nil(t, sub)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkPaidAndActivateHotel(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewSubscriptionRepository(sqlxDB)

	t.Run("Success", func(t *testing.T) {
		hotelID := uuid.New()
		endDate := time.Now().Add(models.MonthlyDuration)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE subscriptions`).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "end_date"}).
				AddRow(hotelID, endDate))
		mock.ExpectExec(`UPDATE hotels`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.MarkPaidAndActivateHotel("order_N8xF2abc", "pay_M9yG3def")
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Pending", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE subscriptions`).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "end_date"}))
		mock.ExpectRollback()

		err := repo.MarkPaidAndActivateHotel("order_N8xF2abc", "pay_M9yG3def")
		assert.ErrorIs(t, err, ErrSubscriptionNotPending)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Hotel Update Fails Rolls Back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE subscriptions`).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "end_date"}).
				AddRow(uuid.New(), time.Now()))
		mock.ExpectExec(`UPDATE hotels`).
			WillReturnError(fmt.Errorf("database error"))
		mock.ExpectRollback()

		err := repo.MarkPaidAndActivateHotel("order_N8xF2abc", "pay_M9yG3def")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to activate hotel")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkFailed(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewSubscriptionRepository(sqlxDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE subscriptions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkFailed("order_N8xF2abc")
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Terminal", func(t *testing.T) {
		mock.ExpectExec(`UPDATE subscriptions`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkFailed("order_N8xF2abc")
		assert.ErrorIs(t, err, ErrSubscriptionNotPending)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetLatestPaidEndDate(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewSubscriptionRepository(sqlxDB)

	t.Run("Has Paid Subscription", func(t *testing.T) {
		hotelID := uuid.New()
		endDate := time.Now().Add(10 * 24 * time.Hour)

		mock.ExpectQuery(`SELECT MAX\(end_date\) FROM subscriptions`).
			WithArgs(hotelID, models.PaymentStatusPaid).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(endDate))

		got, err := repo.GetLatestPaidEndDate(hotelID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.WithinDuration(t, endDate, *got, time.Second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Never Paid", func(t *testing.T) {
		hotelID := uuid.New()

		mock.ExpectQuery(`SELECT MAX\(end_date\) FROM subscriptions`).
			WithArgs(hotelID, models.PaymentStatusPaid).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		got, err := repo.GetLatestPaidEndDate(hotelID)
		require.NoError(t, err)
		assert.Nil(t, got)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
