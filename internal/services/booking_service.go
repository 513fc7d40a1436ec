package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/collegetransit/bus-pass-backend/internal/database"
	"github.com/collegetransit/bus-pass-backend/internal/models"
)

// SettingsStore reads the singleton admin settings row
type SettingsStore interface {
	Get(ctx context.Context) (*models.AdminSettings, error)
}

// SeatInventory is the guarded per-route seat counter. TryReserveSeat and
// ReleaseSeat are the only mutations the booking flow may perform.
type SeatInventory interface {
	TryReserveSeat(ctx context.Context, routeCode string) (bool, error)
	ReleaseSeat(ctx context.Context, routeCode string) error
	GetByRoute(ctx context.Context, routeCode string) (*models.RouteAvailability, error)
}

// BookingStore persists booking rows
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
	UpdatePaymentStatus(ctx context.Context, id string, paid bool) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	Stats(ctx context.Context) (*models.BookingStats, error)
}

// BookingService orchestrates booking creation and deletion around the seat
// inventory. Reserve-then-persist is a manual two-step: the booking insert is
// not in the same transaction as the seat decrement, so the failure paths
// compensate explicitly.
type BookingService struct {
	settings  SettingsStore
	inventory SeatInventory
	bookings  BookingStore
	logger    logrus.FieldLogger
	timeout   time.Duration
}

// NewBookingService creates a new BookingService
func NewBookingService(settings SettingsStore, inventory SeatInventory, bookings BookingStore, logger logrus.FieldLogger, timeout time.Duration) *BookingService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BookingService{
		settings:  settings,
		inventory: inventory,
		bookings:  bookings,
		logger:    logger,
		timeout:   timeout,
	}
}

// CreateBooking validates the request, reserves a seat and persists the
// booking. Order matters: the settings gate and validation run before any
// mutation, and a failed insert releases the reserved seat again.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check booking availability: %w", err)
	}
	if !settings.BookingEnabled {
		return nil, ErrBookingClosed
	}

	reserved, err := s.inventory.TryReserveSeat(ctx, req.BusRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}
	if !reserved {
		// The guarded decrement does not distinguish an unknown route
		// from a sold-out one; look the route up to report 404 vs 400.
		if _, lookupErr := s.inventory.GetByRoute(ctx, req.BusRoute); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, ErrNoSeatsAvailable
	}

	booking := &models.Booking{
		AdmissionNumber: req.AdmissionNumber,
		StudentName:     req.StudentName,
		BusRoute:        req.BusRoute,
		Destination:     req.Destination,
		PaymentStatus:   req.PaymentStatus,
	}
	if req.Timestamp != nil {
		booking.CreatedAt = req.Timestamp.UTC()
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		// Compensating release: the seat was decremented but no booking
		// exists, so hand it back. If the release itself fails the seat
		// is stranded and needs manual reconciliation.
		if releaseErr := s.inventory.ReleaseSeat(context.WithoutCancel(ctx), req.BusRoute); releaseErr != nil {
			s.logger.WithFields(logrus.Fields{
				"bus_route":               req.BusRoute,
				"admission_number":        req.AdmissionNumber,
				"reconciliation_required": true,
			}).WithError(releaseErr).Error("Failed to release seat after booking insert failure")
		}
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"bus_route":  booking.BusRoute,
	}).Info("Booking created")

	return booking, nil
}

// DeleteBooking removes a booking and returns its seat to the route. The
// release is best-effort: a failure is logged for reconciliation but does
// not resurrect the deleted booking.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.inventory.ReleaseSeat(context.WithoutCancel(ctx), booking.BusRoute); err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id":              id,
			"bus_route":               booking.BusRoute,
			"reconciliation_required": true,
		}).WithError(err).Error("Failed to release seat after booking deletion")
	}

	return nil
}

// UpdatePaymentStatus flips a booking's payment flag. No inventory effect.
func (s *BookingService) UpdatePaymentStatus(ctx context.Context, id string, paid bool) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.bookings.UpdatePaymentStatus(ctx, id, paid)
}

// GetBooking retrieves a single booking
func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.bookings.GetByID(ctx, id)
}

// ListBookings returns a filtered page of bookings with pagination metadata
func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter.Normalize()

	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	totalPages := total / filter.Limit
	if total%filter.Limit != 0 {
		totalPages++
	}

	return bookings, &models.Pagination{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Stats returns booking statistics for the admin dashboard
func (s *BookingService) Stats(ctx context.Context) (*models.BookingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.bookings.Stats(ctx)
}

// ensure the repositories satisfy the store interfaces
var (
	_ SettingsStore = (*database.SettingsRepository)(nil)
	_ SeatInventory = (*database.AvailabilityRepository)(nil)
	_ BookingStore  = (*database.BookingRepository)(nil)
)
