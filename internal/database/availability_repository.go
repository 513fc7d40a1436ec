package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/collegetransit/bus-pass-backend/internal/models"
)

// AvailabilityRepository handles the per-route seat counters.
//
// All seat mutations on the booking path must go through TryReserveSeat and
// ReleaseSeat; both are single atomic read-modify-write statements so the
// database's row-level guarantees prevent oversold routes. The admin override
// path (SetForRoute, UpsertMany) deliberately bypasses that discipline.
type AvailabilityRepository struct {
	db DB
}

// NewAvailabilityRepository creates a new AvailabilityRepository
func NewAvailabilityRepository(db DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// TryReserveSeat atomically decrements the route's seat counter if seats
// remain. Returns false when the route is unknown or sold out.
func (r *AvailabilityRepository) TryReserveSeat(ctx context.Context, routeCode string) (bool, error) {
	query := `
		UPDATE bus_availability
		SET available_seats = available_seats - 1, updated_at = NOW()
		WHERE bus_route = $1 AND available_seats > 0
	`

	result, err := r.db.ExecContext(ctx, query, routeCode)
	if err != nil {
		return false, fmt.Errorf("failed to reserve seat for route %s: %w", routeCode, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read reserve result for route %s: %w", routeCode, err)
	}

	return rowsAffected == 1, nil
}

// ReleaseSeat returns one seat to the route, capped at the bus's capacity.
// Used when a booking is deleted or when booking persistence fails after a
// successful reservation.
func (r *AvailabilityRepository) ReleaseSeat(ctx context.Context, routeCode string) error {
	query := `
		UPDATE bus_availability
		SET available_seats = LEAST(
			available_seats + 1,
			(SELECT total_seats FROM buses WHERE route_code = bus_availability.bus_route)
		), updated_at = NOW()
		WHERE bus_route = $1
	`

	result, err := r.db.ExecContext(ctx, query, routeCode)
	if err != nil {
		return fmt.Errorf("failed to release seat for route %s: %w", routeCode, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read release result for route %s: %w", routeCode, err)
	}

	if rowsAffected == 0 {
		return ErrRouteNotFound
	}

	return nil
}

// GetAll returns the available seat count per route code
func (r *AvailabilityRepository) GetAll(ctx context.Context) (map[string]int, error) {
	query := `SELECT bus_route, available_seats FROM bus_availability ORDER BY bus_route`

	var rows []models.RouteAvailability
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	availability := make(map[string]int, len(rows))
	for _, row := range rows {
		availability[row.BusRoute] = row.AvailableSeats
	}

	return availability, nil
}

// GetByRoute returns the availability row for a single route
func (r *AvailabilityRepository) GetByRoute(ctx context.Context, routeCode string) (*models.RouteAvailability, error) {
	query := `
		SELECT id, bus_route, available_seats, updated_at
		FROM bus_availability
		WHERE bus_route = $1
	`

	var availability models.RouteAvailability
	if err := r.db.GetContext(ctx, &availability, query, routeCode); err != nil {
		if isNoRows(err) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get availability for route %s: %w", routeCode, err)
	}

	return &availability, nil
}

// SetForRoute upserts the seat counter for a single route (admin override)
func (r *AvailabilityRepository) SetForRoute(ctx context.Context, routeCode string, seats int) error {
	if seats < 0 {
		return fmt.Errorf("available_seats cannot be negative")
	}

	query := `
		INSERT INTO bus_availability (bus_route, available_seats, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (bus_route)
		DO UPDATE SET available_seats = EXCLUDED.available_seats, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, routeCode, seats); err != nil {
		return fmt.Errorf("failed to set availability for route %s: %w", routeCode, err)
	}

	return nil
}

// UpsertMany applies the seat counters for several routes in one statement,
// so a partial failure cannot leave only some routes updated.
func (r *AvailabilityRepository) UpsertMany(ctx context.Context, availability map[string]int) error {
	if len(availability) == 0 {
		return nil
	}

	values := make([]string, 0, len(availability))
	args := make([]interface{}, 0, len(availability)*2)
	argCount := 1

	for route, seats := range availability {
		if seats < 0 {
			return fmt.Errorf("available_seats cannot be negative for route %s", route)
		}
		values = append(values, fmt.Sprintf("($%d, $%d, NOW())", argCount, argCount+1))
		args = append(args, route, seats)
		argCount += 2
	}

	query := fmt.Sprintf(`
		INSERT INTO bus_availability (bus_route, available_seats, updated_at)
		VALUES %s
		ON CONFLICT (bus_route)
		DO UPDATE SET available_seats = EXCLUDED.available_seats, updated_at = NOW()
	`, strings.Join(values, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}

	return nil
}

// DeleteForRoute removes the availability row for a route (bus deletion)
func (r *AvailabilityRepository) DeleteForRoute(ctx context.Context, routeCode string) error {
	query := `DELETE FROM bus_availability WHERE bus_route = $1`

	if _, err := r.db.ExecContext(ctx, query, routeCode); err != nil {
		return fmt.Errorf("failed to delete availability for route %s: %w", routeCode, err)
	}

	return nil
}
