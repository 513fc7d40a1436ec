package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegetransit/bus-pass-backend/internal/database"
	"github.com/collegetransit/bus-pass-backend/internal/models"
	"github.com/collegetransit/bus-pass-backend/internal/services"
)

func setupAdminBookingHandler(t *testing.T) (*AdminBookingHandler, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	bookingService := services.NewBookingService(
		database.NewSettingsRepository(db),
		database.NewAvailabilityRepository(db),
		database.NewBookingRepository(db),
		testLogger(),
		0,
	)
	return NewAdminBookingHandler(bookingService, testLogger()), mock
}

func adminBookingRouter(handler *AdminBookingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin/bookings", handler.ListBookings)
	router.PUT("/admin/bookings", handler.UpdatePaymentStatus)
	router.DELETE("/admin/bookings", handler.DeleteBooking)
	router.GET("/admin/bookings/stats", handler.GetStats)
	return router
}

func adminBookingColumns() []string {
	return []string{"id", "admission_number", "student_name", "bus_route", "destination", "payment_status", "created_at"}
}

func TestListBookingsEndpoint(t *testing.T) {
	t.Run("Default Page", func(t *testing.T) {
		handler, mock := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		now := time.Now()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(adminBookingColumns()).
				AddRow(uuid.New().String(), "2021001", "Asha Kumar", "R1", "City Center", true, now))

		req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Bookings   []models.Booking   `json:"bookings"`
			Pagination *models.Pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Bookings, 1)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, 1, resp.Pagination.Page)
		assert.Equal(t, 50, resp.Pagination.Limit)
		assert.Equal(t, 1, resp.Pagination.Total)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Filters Pass Through", func(t *testing.T) {
		handler, mock := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE bus_route = \$1 AND payment_status = \$2`).
			WithArgs("R1", true).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs("R1", true, 10, 0).
			WillReturnRows(sqlmock.NewRows(adminBookingColumns()))

		req := httptest.NewRequest(http.MethodGet, "/admin/bookings?bus_route=R1&payment_status=true&limit=10", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Bad Payment Status", func(t *testing.T) {
		handler, _ := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		req := httptest.NewRequest(http.MethodGet, "/admin/bookings?payment_status=maybe", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Bad Date Filter", func(t *testing.T) {
		handler, _ := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		req := httptest.NewRequest(http.MethodGet, "/admin/bookings?start_date=yesterday", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "start_date")
	})
}

func TestUpdatePaymentStatusEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mock := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		id := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(true, id).
			WillReturnRows(sqlmock.NewRows(adminBookingColumns()).
				AddRow(id, "2021001", "Asha Kumar", "R1", "City Center", true, now))

		paid := true
		payload, _ := json.Marshal(models.UpdateBookingPaymentRequest{ID: id, PaymentStatus: &paid})
		req := httptest.NewRequest(http.MethodPut, "/admin/bookings", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), id)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		handler, mock := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		id := uuid.New().String()
		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(false, id).
			WillReturnRows(sqlmock.NewRows(adminBookingColumns()))

		paid := false
		payload, _ := json.Marshal(models.UpdateBookingPaymentRequest{ID: id, PaymentStatus: &paid})
		req := httptest.NewRequest(http.MethodPut, "/admin/bookings", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteBookingEndpoint(t *testing.T) {
	t.Run("Success Releases Seat", func(t *testing.T) {
		handler, mock := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		id := uuid.New().String()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(adminBookingColumns()).
				AddRow(id, "2021001", "Asha Kumar", "R1", "City Center", false, now))
		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE bus_availability`).
			WithArgs("R1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest(http.MethodDelete, "/admin/bookings?id="+id, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing ID", func(t *testing.T) {
		handler, _ := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		req := httptest.NewRequest(http.MethodDelete, "/admin/bookings", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		handler, mock := setupAdminBookingHandler(t)
		router := adminBookingRouter(handler)

		id := uuid.New().String()
		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(adminBookingColumns()))

		req := httptest.NewRequest(http.MethodDelete, "/admin/bookings?id="+id, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetStatsEndpoint(t *testing.T) {
	handler, mock := setupAdminBookingHandler(t)
	router := adminBookingRouter(handler)

	mock.ExpectQuery(`SELECT(.+)COUNT\(\*\) AS total`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "paid", "recent"}).AddRow(10, 6, 3))
	mock.ExpectQuery(`SELECT bus_route AS route, COUNT\(\*\) AS count`).
		WillReturnRows(sqlmock.NewRows([]string{"route", "count"}).AddRow("R1", 7))

	req := httptest.NewRequest(http.MethodGet, "/admin/bookings/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.BookingStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 10, stats.TotalBookings)
	assert.Equal(t, 4, stats.PendingBookings)
	require.Len(t, stats.RouteStats, 1)
	assert.Equal(t, "R1", stats.RouteStats[0].Route)

	assert.NoError(t, mock.ExpectationsWereMet())
}
