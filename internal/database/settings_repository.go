package database

import (
	"context"
	"fmt"
	"time"

	"github.com/collegetransit/bus-pass-backend/internal/models"
)

// settingsRowID is the fixed id of the admin_settings singleton row
const settingsRowID = 1

// SettingsRepository handles the admin_settings singleton row
type SettingsRepository struct {
	db DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get loads the singleton settings row. A missing row is treated as
// "booking disabled" defaults rather than an error, so a fresh database
// behaves sanely before the first admin save.
func (r *SettingsRepository) Get(ctx context.Context) (*models.AdminSettings, error) {
	query := `
		SELECT id, booking_enabled, go_date, return_date, updated_at
		FROM admin_settings
		WHERE id = $1
	`

	var settings models.AdminSettings
	if err := r.db.GetContext(ctx, &settings, query, settingsRowID); err != nil {
		if isNoRows(err) {
			return &models.AdminSettings{ID: settingsRowID, BookingEnabled: false}, nil
		}
		return nil, fmt.Errorf("failed to get admin settings: %w", err)
	}

	return &settings, nil
}

// Upsert writes the singleton settings row
func (r *SettingsRepository) Upsert(ctx context.Context, bookingEnabled bool, goDate, returnDate *time.Time) error {
	query := `
		INSERT INTO admin_settings (id, booking_enabled, go_date, return_date, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			booking_enabled = EXCLUDED.booking_enabled,
			go_date = EXCLUDED.go_date,
			return_date = EXCLUDED.return_date,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, settingsRowID, bookingEnabled, goDate, returnDate); err != nil {
		return fmt.Errorf("failed to upsert admin settings: %w", err)
	}

	return nil
}
