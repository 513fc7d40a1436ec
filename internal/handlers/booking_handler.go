package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegetransit/bus-pass-backend/internal/database"
	"github.com/collegetransit/bus-pass-backend/internal/models"
	"github.com/collegetransit/bus-pass-backend/internal/services"
)

// BookingHandler handles the public booking flow
type BookingHandler struct {
	bookingService  *services.BookingService
	settingsService *services.SettingsService
	ticketService   *services.TicketService
	availability    services.AvailabilityStore
	logger          logrus.FieldLogger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	bookingService *services.BookingService,
	settingsService *services.SettingsService,
	ticketService *services.TicketService,
	availability services.AvailabilityStore,
	logger logrus.FieldLogger,
) *BookingHandler {
	return &BookingHandler{
		bookingService:  bookingService,
		settingsService: settingsService,
		ticketService:   ticketService,
		availability:    availability,
		logger:          logger,
	}
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingClosed):
			c.JSON(http.StatusForbidden, gin.H{"error": "Booking is currently closed"})
		case errors.Is(err, services.ErrNoSeatsAvailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No seats available for this route"})
		case errors.Is(err, database.ErrRouteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown bus route"})
		default:
			h.logger.WithError(err).Error("Failed to create booking")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": booking})
}

// GetAvailability handles GET /buses/availability
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	availability, err := h.availability.GetAll(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get seat availability")
		c.JSON(http.StatusInternalServerError, gin.H{})
		return
	}

	c.JSON(http.StatusOK, availability)
}

// GetBookingStatus handles GET /booking-status
func (h *BookingHandler) GetBookingStatus(c *gin.Context) {
	enabled, err := h.settingsService.BookingEnabled(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read booking status")
		c.JSON(http.StatusInternalServerError, gin.H{"enabled": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}

// DownloadTicket handles GET /bookings/:id/ticket
func (h *BookingHandler) DownloadTicket(c *gin.Context) {
	id := c.Param("id")

	pdfBytes, fileName, err := h.ticketService.GeneratePass(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to generate bus pass")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate bus pass"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
