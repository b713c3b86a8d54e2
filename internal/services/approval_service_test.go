package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuqr/hotel-menu-backend/internal/database"
	"github.com/menuqr/hotel-menu-backend/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newApprovalService(t *testing.T) (*ApprovalService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	svc := NewApprovalService(
		database.NewMenuUpdateRequestRepository(sqlxDB),
		database.NewMenuItemRepository(sqlxDB),
		database.NewHotelRepository(sqlxDB),
		testLogger(),
	)
	return svc, mock
}

func strPtr(s string) *string { return &s }
func int64Ptr(i int64) *int64 { return &i }

var menuItemColumns = []string{
	"id", "hotel_id", "name", "price_paise", "description", "photo_url",
	"category", "meal_type", "available_till", "is_approved", "created_at", "updated_at",
}

var requestColumns = []string{
	"id", "hotel_id", "menu_item_id", "requested_changes", "status",
	"submitted_at", "decided_at", "decided_by",
}

var hotelColumns = []string{
	"id", "owner_user_id", "name", "description", "location", "contact", "services",
	"is_active", "subscription_end_date", "created_at", "updated_at",
}

func TestSubmitRequest(t *testing.T) {
	expectHotel := func(mock sqlmock.Sqlmock, hotelID uuid.UUID, active bool) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM hotels`).
			WithArgs(hotelID).
			WillReturnRows(sqlmock.NewRows(hotelColumns).AddRow(
				hotelID, uuid.New(), "Grand Palace", nil, nil, nil, nil,
				active, now.Add(24*time.Hour), now, now))
	}

	t.Run("New Item Success", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()

		expectHotel(mock, hotelID, true)
		mock.ExpectExec(`INSERT INTO menu_update_requests`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req, err := svc.SubmitRequest(hotelID, nil, models.MenuItemChanges{
			Name:       strPtr("Masala Tea"),
			PricePaise: int64Ptr(2000),
			Category:   strPtr("Beverages"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusPending, req.Status)
		assert.Equal(t, hotelID, req.HotelID)
		assert.False(t, req.MenuItemID.Valid)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Patch", func(t *testing.T) {
		svc, _ := newApprovalService(t)

		_, err := svc.SubmitRequest(uuid.New(), nil, models.MenuItemChanges{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("New Item Missing Required Fields", func(t *testing.T) {
		svc, _ := newApprovalService(t)

		_, err := svc.SubmitRequest(uuid.New(), nil, models.MenuItemChanges{
			Description: strPtr("A fine dish"),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Inactive Hotel", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()

		expectHotel(mock, hotelID, false)

		_, err := svc.SubmitRequest(hotelID, nil, models.MenuItemChanges{
			Name:       strPtr("Masala Tea"),
			PricePaise: int64Ptr(2000),
			Category:   strPtr("Beverages"),
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Unknown Hotel", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM hotels`).
			WithArgs(hotelID).
			WillReturnRows(sqlmock.NewRows(hotelColumns))

		_, err := svc.SubmitRequest(hotelID, nil, models.MenuItemChanges{
			Name:       strPtr("Masala Tea"),
			PricePaise: int64Ptr(2000),
			Category:   strPtr("Beverages"),
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Existing Item Success", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()
		itemID := uuid.New()
		now := time.Now()

		expectHotel(mock, hotelID, true)
		mock.ExpectQuery(`SELECT (.+) FROM menu_items`).
			WithArgs(itemID).
			WillReturnRows(sqlmock.NewRows(menuItemColumns).AddRow(
				itemID, hotelID, "Masala Tea", int64(2000), nil, nil,
				"Beverages", nil, nil, true, now, now))
		mock.ExpectExec(`INSERT INTO menu_update_requests`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req, err := svc.SubmitRequest(hotelID, &itemID, models.MenuItemChanges{
			PricePaise: int64Ptr(2500),
		})
		require.NoError(t, err)
		assert.True(t, req.MenuItemID.Valid)
		assert.Equal(t, itemID, req.MenuItemID.UUID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Item Of Another Hotel", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()
		itemID := uuid.New()
		now := time.Now()

		expectHotel(mock, hotelID, true)
		mock.ExpectQuery(`SELECT (.+) FROM menu_items`).
			WithArgs(itemID).
			WillReturnRows(sqlmock.NewRows(menuItemColumns).AddRow(
				itemID, uuid.New(), "Masala Tea", int64(2000), nil, nil,
				"Beverages", nil, nil, true, now, now))

		_, err := svc.SubmitRequest(hotelID, &itemID, models.MenuItemChanges{
			PricePaise: int64Ptr(2500),
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Item Not Found", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()
		itemID := uuid.New()

		expectHotel(mock, hotelID, true)
		mock.ExpectQuery(`SELECT (.+) FROM menu_items`).
			WithArgs(itemID).
			WillReturnRows(sqlmock.NewRows(menuItemColumns))

		_, err := svc.SubmitRequest(hotelID, &itemID, models.MenuItemChanges{
			PricePaise: int64Ptr(2500),
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDecideRequest(t *testing.T) {
	t.Run("Approve New Item", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		requestID := uuid.New()
		hotelID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM menu_update_requests`).
			WithArgs(requestID).
			WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
				requestID, hotelID, nil,
				[]byte(`{"name":"Masala Tea","price_paise":2000,"category":"Beverages"}`),
				models.RequestStatusPending, now, nil, nil))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE menu_update_requests`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO menu_items`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		req, item, err := svc.DecideRequest(requestID, true, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, req.Status)
		require.NotNil(t, item)
		assert.Equal(t, "Masala Tea", item.Name)
		assert.Equal(t, int64(2000), item.PricePaise)
		assert.Equal(t, hotelID, item.HotelID)
		assert.True(t, item.IsApproved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Reject", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		requestID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM menu_update_requests`).
			WithArgs(requestID).
			WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
				requestID, uuid.New(), nil, []byte(`{"name":"Tea"}`),
				models.RequestStatusPending, now, nil, nil))
		mock.ExpectExec(`UPDATE menu_update_requests`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req, item, err := svc.DecideRequest(requestID, false, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusRejected, req.Status)
		assert.Nil(t, item)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		requestID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM menu_update_requests`).
			WithArgs(requestID).
			WillReturnRows(sqlmock.NewRows(requestColumns))

		_, _, err := svc.DecideRequest(requestID, true, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Already Decided", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		requestID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM menu_update_requests`).
			WithArgs(requestID).
			WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
				requestID, uuid.New(), nil, []byte(`{"name":"Tea"}`),
				models.RequestStatusApproved, now, now, uuid.New()))

		_, _, err := svc.DecideRequest(requestID, true, uuid.New())
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("Target Item Deleted Surfaces Conflict", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		requestID := uuid.New()
		itemID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM menu_update_requests`).
			WithArgs(requestID).
			WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
				requestID, uuid.New(), itemID, []byte(`{"price_paise":2500}`),
				models.RequestStatusPending, now, nil, nil))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE menu_update_requests`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE menu_items`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, _, err := svc.DecideRequest(requestID, true, uuid.New())
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestListRequests(t *testing.T) {
	t.Run("Super Admin Sees All", func(t *testing.T) {
		svc, mock := newApprovalService(t)

		mock.ExpectQuery(`SELECT (.+) FROM menu_update_requests ORDER BY submitted_at DESC`).
			WillReturnRows(sqlmock.NewRows(requestColumns))

		_, err := svc.ListRequests(models.RoleSuperAdmin, nil, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Owner Scoped To Own Hotel", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM menu_update_requests WHERE hotel_id`).
			WithArgs(hotelID).
			WillReturnRows(sqlmock.NewRows(requestColumns))

		_, err := svc.ListRequests(models.RoleHotelOwner, &hotelID, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Role Forbidden", func(t *testing.T) {
		svc, _ := newApprovalService(t)

		_, err := svc.ListRequests("guest", nil, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestDeleteItem(t *testing.T) {
	t.Run("Owner Deletes Own Item", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()
		itemID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM menu_items`).
			WithArgs(itemID).
			WillReturnRows(sqlmock.NewRows(menuItemColumns).AddRow(
				itemID, hotelID, "Masala Tea", int64(2000), nil, nil,
				"Beverages", nil, nil, true, now, now))
		mock.ExpectExec(`DELETE FROM menu_items`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.DeleteItem(models.RoleHotelOwner, &hotelID, itemID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Owner Cannot Delete Foreign Item", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		myHotel := uuid.New()
		itemID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM menu_items`).
			WithArgs(itemID).
			WillReturnRows(sqlmock.NewRows(menuItemColumns).AddRow(
				itemID, uuid.New(), "Masala Tea", int64(2000), nil, nil,
				"Beverages", nil, nil, true, now, now))

		err := svc.DeleteItem(models.RoleHotelOwner, &myHotel, itemID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Super Admin Deletes Any Item", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		itemID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM menu_items`).
			WithArgs(itemID).
			WillReturnRows(sqlmock.NewRows(menuItemColumns).AddRow(
				itemID, uuid.New(), "Masala Tea", int64(2000), nil, nil,
				"Beverages", nil, nil, true, now, now))
		mock.ExpectExec(`DELETE FROM menu_items`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.DeleteItem(models.RoleSuperAdmin, nil, itemID)
		assert.NoError(t, err)
	})
}

func TestPublicMenu(t *testing.T) {
	t.Run("Active Hotel", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM hotels`).
			WithArgs(hotelID).
			WillReturnRows(sqlmock.NewRows(hotelColumns).AddRow(
				hotelID, uuid.New(), "Grand Palace", nil, nil, nil, nil,
				true, now.Add(24*time.Hour), now, now))
		mock.ExpectQuery(`SELECT (.+) FROM menu_items`).
			WithArgs(hotelID).
			WillReturnRows(sqlmock.NewRows(menuItemColumns).AddRow(
				uuid.New(), hotelID, "Masala Tea", int64(2000), nil, nil,
				"Beverages", nil, nil, true, now, now))

		hotel, items, err := svc.PublicMenu(hotelID)
		require.NoError(t, err)
		assert.Equal(t, "Grand Palace", hotel.Name)
		require.Len(t, items, 1)
		assert.True(t, items[0].IsApproved)
	})

	t.Run("Inactive Hotel Hidden", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM hotels`).
			WithArgs(hotelID).
			WillReturnRows(sqlmock.NewRows(hotelColumns).AddRow(
				hotelID, uuid.New(), "Grand Palace", nil, nil, nil, nil,
				false, nil, now, now))

		_, _, err := svc.PublicMenu(hotelID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Unknown Hotel", func(t *testing.T) {
		svc, mock := newApprovalService(t)
		hotelID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM hotels`).
			WithArgs(hotelID).
			WillReturnRows(sqlmock.NewRows(hotelColumns))

		_, _, err := svc.PublicMenu(hotelID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
