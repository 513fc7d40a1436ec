package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegetransit/bus-pass-backend/internal/database"
	"github.com/collegetransit/bus-pass-backend/internal/models"
)

// BusHandler handles admin bus CRUD
type BusHandler struct {
	busRepo          *database.BusRepository
	availabilityRepo *database.AvailabilityRepository
	bookingRepo      *database.BookingRepository
	logger           logrus.FieldLogger
}

// NewBusHandler creates a new BusHandler
func NewBusHandler(
	busRepo *database.BusRepository,
	availabilityRepo *database.AvailabilityRepository,
	bookingRepo *database.BookingRepository,
	logger logrus.FieldLogger,
) *BusHandler {
	return &BusHandler{
		busRepo:          busRepo,
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
		logger:           logger,
	}
}

// GetAllBuses handles GET /admin/buses
func (h *BusHandler) GetAllBuses(c *gin.Context) {
	buses, err := h.busRepo.GetAll(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get buses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch buses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

// CreateBus handles POST /admin/buses. A new route starts with its full
// capacity available.
func (h *BusHandler) CreateBus(c *gin.Context) {
	var req models.CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totalSeats := req.TotalSeats
	if totalSeats == 0 {
		totalSeats = models.DefaultTotalSeats
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	bus := &models.Bus{
		Name:       req.Name,
		RouteCode:  req.RouteCode,
		TotalSeats: totalSeats,
		IsActive:   isActive,
	}

	ctx := c.Request.Context()
	if err := h.busRepo.Create(ctx, bus); err != nil {
		if errors.Is(err, database.ErrDuplicateRouteCode) {
			c.JSON(http.StatusConflict, gin.H{"error": "Bus with this route code already exists"})
			return
		}
		h.logger.WithError(err).Error("Failed to create bus")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bus"})
		return
	}

	if err := h.availabilityRepo.SetForRoute(ctx, bus.RouteCode, bus.TotalSeats); err != nil {
		h.logger.WithError(err).WithField("route_code", bus.RouteCode).
			Error("Failed to initialize seat availability for new bus")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize seat availability"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "bus": bus})
}

// UpdateBus handles PUT /admin/buses
func (h *BusHandler) UpdateBus(c *gin.Context) {
	var req models.UpdateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bus, err := h.busRepo.Update(c.Request.Context(), req.ID, &req)
	if err != nil {
		if errors.Is(err, database.ErrBusNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update bus")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bus"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bus": bus})
}

// DeleteBus handles DELETE /admin/buses?id=. Deleting a bus cascades its
// route's bookings and availability row; a route must not linger with seats
// for a bus that no longer exists.
func (h *BusHandler) DeleteBus(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bus ID is required"})
		return
	}

	ctx := c.Request.Context()

	bus, err := h.busRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrBusNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load bus for deletion")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bus"})
		return
	}

	removed, err := h.bookingRepo.DeleteByRoute(ctx, bus.RouteCode)
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete bookings for bus route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bus"})
		return
	}

	if err := h.availabilityRepo.DeleteForRoute(ctx, bus.RouteCode); err != nil {
		h.logger.WithError(err).Error("Failed to delete availability for bus route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bus"})
		return
	}

	if err := h.busRepo.Delete(ctx, id); err != nil {
		h.logger.WithError(err).Error("Failed to delete bus")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bus"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"bus_id":           id,
		"route_code":       bus.RouteCode,
		"bookings_removed": removed,
	}).Info("Bus deleted")

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bus deleted successfully"})
}
