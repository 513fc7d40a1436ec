package services

import (
	"context"
	"fmt"
	"time"

	"github.com/collegetransit/bus-pass-backend/internal/database"
	"github.com/collegetransit/bus-pass-backend/internal/models"
)

// travelDateLayout is the wire format for go/return dates
const travelDateLayout = "2006-01-02"

// SettingsWriter reads and upserts the admin settings singleton
type SettingsWriter interface {
	Get(ctx context.Context) (*models.AdminSettings, error)
	Upsert(ctx context.Context, bookingEnabled bool, goDate, returnDate *time.Time) error
}

// AvailabilityStore is the admin-facing view of the seat counters
type AvailabilityStore interface {
	GetAll(ctx context.Context) (map[string]int, error)
	UpsertMany(ctx context.Context, availability map[string]int) error
}

// SettingsService combines the settings singleton with the per-route seat
// overrides. The override path writes seat counters directly, regardless of
// outstanding bookings; that is an intentional administrative escape hatch.
type SettingsService struct {
	settings     SettingsWriter
	availability AvailabilityStore
	timeout      time.Duration
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settings SettingsWriter, availability AvailabilityStore, timeout time.Duration) *SettingsService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SettingsService{settings: settings, availability: availability, timeout: timeout}
}

// Get returns the settings row plus the availability map
func (s *SettingsService) Get(ctx context.Context) (*models.SettingsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	availability, err := s.availability.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := &models.SettingsResponse{
		BookingEnabled:  settings.BookingEnabled,
		BusAvailability: availability,
	}
	if settings.GoDate != nil {
		resp.GoDate = settings.GoDate.Format(travelDateLayout)
	}
	if settings.ReturnDate != nil {
		resp.ReturnDate = settings.ReturnDate.Format(travelDateLayout)
	}

	return resp, nil
}

// Update applies a partial settings update. Unsupplied fields keep their
// current values; the availability map is written in one batched upsert.
func (s *SettingsService) Update(ctx context.Context, req *models.UpdateSettingsRequest) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}

	bookingEnabled := current.BookingEnabled
	if req.BookingEnabled != nil {
		bookingEnabled = *req.BookingEnabled
	}

	goDate := current.GoDate
	if req.GoDate != nil {
		if goDate, err = parseTravelDate(*req.GoDate); err != nil {
			return fmt.Errorf("invalid goDate: %w", err)
		}
	}

	returnDate := current.ReturnDate
	if req.ReturnDate != nil {
		if returnDate, err = parseTravelDate(*req.ReturnDate); err != nil {
			return fmt.Errorf("invalid returnDate: %w", err)
		}
	}

	if err := s.settings.Upsert(ctx, bookingEnabled, goDate, returnDate); err != nil {
		return err
	}

	if len(req.BusAvailability) > 0 {
		if err := s.availability.UpsertMany(ctx, req.BusAvailability); err != nil {
			return err
		}
	}

	return nil
}

// BookingEnabled reports whether the public booking flow is open
func (s *SettingsService) BookingEnabled(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}

	return settings.BookingEnabled, nil
}

// parseTravelDate parses a YYYY-MM-DD string; an empty string clears the date
func parseTravelDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(travelDateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD, got %q", value)
	}

	return &parsed, nil
}

var (
	_ SettingsWriter    = (*database.SettingsRepository)(nil)
	_ AvailabilityStore = (*database.AvailabilityRepository)(nil)
)
