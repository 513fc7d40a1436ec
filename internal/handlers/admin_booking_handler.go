package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegetransit/bus-pass-backend/internal/database"
	"github.com/collegetransit/bus-pass-backend/internal/models"
	"github.com/collegetransit/bus-pass-backend/internal/services"
)

// AdminBookingHandler handles the admin bookings dashboard endpoints
type AdminBookingHandler struct {
	bookingService *services.BookingService
	logger         logrus.FieldLogger
}

// NewAdminBookingHandler creates a new AdminBookingHandler
func NewAdminBookingHandler(bookingService *services.BookingService, logger logrus.FieldLogger) *AdminBookingHandler {
	return &AdminBookingHandler{bookingService: bookingService, logger: logger}
}

// ListBookings handles GET /admin/bookings with pagination and filters
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	filter := models.BookingFilter{
		Page:     parseIntQuery(c, "page", 1),
		Limit:    parseIntQuery(c, "limit", 50),
		BusRoute: c.Query("bus_route"),
	}

	if raw := c.Query("payment_status"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment_status must be true or false"})
			return
		}
		filter.PaymentStatus = &paid
	}

	for _, q := range []struct {
		name string
		dest **time.Time
	}{
		{"start_date", &filter.StartDate},
		{"end_date", &filter.EndDate},
	} {
		if raw := c.Query(q.name); raw != "" {
			parsed, err := parseDateQuery(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": q.name + " must be an RFC 3339 timestamp or YYYY-MM-DD date"})
				return
			}
			*q.dest = parsed
		}
	}

	bookings, pagination, err := h.bookingService.ListBookings(c.Request.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings":   bookings,
		"pagination": pagination,
	})
}

// UpdatePaymentStatus handles PUT /admin/bookings
func (h *AdminBookingHandler) UpdatePaymentStatus(c *gin.Context) {
	var req models.UpdateBookingPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.UpdatePaymentStatus(c.Request.Context(), req.ID, *req.PaymentStatus)
	if err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update booking payment status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

// DeleteBooking handles DELETE /admin/bookings?id=
func (h *AdminBookingHandler) DeleteBooking(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Booking ID is required"})
		return
	}

	if err := h.bookingService.DeleteBooking(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking deleted successfully"})
}

// GetStats handles GET /admin/bookings/stats
func (h *AdminBookingHandler) GetStats(c *gin.Context) {
	stats, err := h.bookingService.Stats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute booking stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// parseIntQuery reads a positive integer query parameter with a default
func parseIntQuery(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return defaultValue
	}
	return value
}

// parseDateQuery accepts RFC 3339 timestamps or bare dates
func parseDateQuery(raw string) (*time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, nil
	}

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
