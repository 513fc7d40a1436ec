package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/collegetransit/bus-pass-backend/internal/models"
)

// BusRepository handles database operations for buses
type BusRepository struct {
	db DB
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db DB) *BusRepository {
	return &BusRepository{db: db}
}

// Create creates a new bus. The route code carries a unique constraint;
// a violation is reported as ErrDuplicateRouteCode.
func (r *BusRepository) Create(ctx context.Context, bus *models.Bus) error {
	if bus.ID == "" {
		bus.ID = uuid.New().String()
	}

	query := `
		INSERT INTO buses (id, name, route_code, total_seats, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		bus.ID, bus.Name, bus.RouteCode, bus.TotalSeats, bus.IsActive,
	).Scan(&bus.CreatedAt, &bus.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRouteCode
		}
		return fmt.Errorf("failed to create bus: %w", err)
	}

	return nil
}

// GetByID retrieves a bus by ID
func (r *BusRepository) GetByID(ctx context.Context, busID string) (*models.Bus, error) {
	query := `
		SELECT id, name, route_code, total_seats, is_active, created_at, updated_at
		FROM buses
		WHERE id = $1
	`

	var bus models.Bus
	if err := r.db.GetContext(ctx, &bus, query, busID); err != nil {
		if isNoRows(err) {
			return nil, ErrBusNotFound
		}
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}

	return &bus, nil
}

// GetByRouteCode retrieves a bus by its unique route code
func (r *BusRepository) GetByRouteCode(ctx context.Context, routeCode string) (*models.Bus, error) {
	query := `
		SELECT id, name, route_code, total_seats, is_active, created_at, updated_at
		FROM buses
		WHERE route_code = $1
	`

	var bus models.Bus
	if err := r.db.GetContext(ctx, &bus, query, routeCode); err != nil {
		if isNoRows(err) {
			return nil, ErrBusNotFound
		}
		return nil, fmt.Errorf("failed to get bus by route code: %w", err)
	}

	return &bus, nil
}

// GetAll retrieves all buses ordered by creation time
func (r *BusRepository) GetAll(ctx context.Context) ([]models.Bus, error) {
	query := `
		SELECT id, name, route_code, total_seats, is_active, created_at, updated_at
		FROM buses
		ORDER BY created_at ASC
	`

	buses := []models.Bus{}
	if err := r.db.SelectContext(ctx, &buses, query); err != nil {
		return nil, fmt.Errorf("failed to get buses: %w", err)
	}

	return buses, nil
}

// Update updates a bus's mutable fields
func (r *BusRepository) Update(ctx context.Context, busID string, req *models.UpdateBusRequest) (*models.Bus, error) {
	updates := []string{}
	args := []interface{}{}
	argCount := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *req.Name)
		argCount++
	}

	if req.TotalSeats != nil {
		updates = append(updates, fmt.Sprintf("total_seats = $%d", argCount))
		args = append(args, *req.TotalSeats)
		argCount++
	}

	if req.IsActive != nil {
		updates = append(updates, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *req.IsActive)
		argCount++
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, busID)

	query := fmt.Sprintf(`
		UPDATE buses
		SET %s
		WHERE id = $%d
		RETURNING id, name, route_code, total_seats, is_active, created_at, updated_at
	`, strings.Join(updates, ", "), argCount)

	var bus models.Bus
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&bus.ID, &bus.Name, &bus.RouteCode, &bus.TotalSeats, &bus.IsActive,
		&bus.CreatedAt, &bus.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrBusNotFound
		}
		return nil, fmt.Errorf("failed to update bus: %w", err)
	}

	return &bus, nil
}

// Delete deletes a bus
func (r *BusRepository) Delete(ctx context.Context, busID string) error {
	query := `DELETE FROM buses WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, busID)
	if err != nil {
		return fmt.Errorf("failed to delete bus: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBusNotFound
	}

	return nil
}
