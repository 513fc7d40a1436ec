package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collegetransit/bus-pass-backend/internal/models"
)

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create persists a booking row. The caller must have already reserved a
// seat for the route; a booking row must never exist without one.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO bookings (id, admission_number, student_name, bus_route, destination, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		booking.ID, booking.AdmissionNumber, booking.StudentName,
		booking.BusRoute, booking.Destination, booking.PaymentStatus,
		booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `
		SELECT id, admission_number, student_name, bus_route, destination, payment_status, created_at
		FROM bookings
		WHERE id = $1
	`

	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if isNoRows(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// List returns a page of bookings matching the filter, newest first,
// together with the total match count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	filter.Normalize()

	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	if filter.BusRoute != "" {
		conditions = append(conditions, fmt.Sprintf("bus_route = $%d", argCount))
		args = append(args, filter.BusRoute)
		argCount++
	}

	if filter.PaymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", argCount))
		args = append(args, *filter.PaymentStatus)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM bookings %s`, where)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	listQuery := fmt.Sprintf(`
		SELECT id, admission_number, student_name, bus_route, destination, payment_status, created_at
		FROM bookings
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argCount, argCount+1)
	args = append(args, filter.Limit, offset)

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, total, nil
}

// UpdatePaymentStatus flips a booking's payment status. The operation is
// idempotent; applying the same status twice is a no-op.
func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id string, paid bool) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET payment_status = $1
		WHERE id = $2
		RETURNING id, admission_number, student_name, bus_route, destination, payment_status, created_at
	`

	var booking models.Booking
	err := r.db.QueryRowContext(ctx, query, paid, id).Scan(
		&booking.ID, &booking.AdmissionNumber, &booking.StudentName,
		&booking.BusRoute, &booking.Destination, &booking.PaymentStatus,
		&booking.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update booking payment status: %w", err)
	}

	return &booking, nil
}

// Delete removes a booking row
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// DeleteByRoute removes all bookings for a route (bus deletion cascade)
func (r *BookingRepository) DeleteByRoute(ctx context.Context, routeCode string) (int64, error) {
	query := `DELETE FROM bookings WHERE bus_route = $1`

	result, err := r.db.ExecContext(ctx, query, routeCode)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookings for route %s: %w", routeCode, err)
	}

	return result.RowsAffected()
}

// Stats aggregates booking counts for the admin dashboard
func (r *BookingRepository) Stats(ctx context.Context) (*models.BookingStats, error) {
	summaryQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE payment_status) AS paid,
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days') AS recent
		FROM bookings
	`

	var summary struct {
		Total  int `db:"total"`
		Paid   int `db:"paid"`
		Recent int `db:"recent"`
	}
	if err := r.db.GetContext(ctx, &summary, summaryQuery); err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	routeQuery := `
		SELECT bus_route AS route, COUNT(*) AS count
		FROM bookings
		GROUP BY bus_route
		ORDER BY count DESC, route ASC
	`

	routeStats := []models.RouteCount{}
	if err := r.db.SelectContext(ctx, &routeStats, routeQuery); err != nil {
		return nil, fmt.Errorf("failed to get per-route booking stats: %w", err)
	}

	return &models.BookingStats{
		TotalBookings:   summary.Total,
		PaidBookings:    summary.Paid,
		PendingBookings: summary.Total - summary.Paid,
		RecentBookings:  summary.Recent,
		RouteStats:      routeStats,
	}, nil
}

// CountByRoute returns the number of bookings currently held for a route
func (r *BookingRepository) CountByRoute(ctx context.Context, routeCode string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE bus_route = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, routeCode); err != nil {
		return 0, fmt.Errorf("failed to count bookings for route %s: %w", routeCode, err)
	}

	return count, nil
}
