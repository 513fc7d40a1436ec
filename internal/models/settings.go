package models

import "time"

// AdminSettings is the singleton settings row gating the public booking flow
type AdminSettings struct {
	ID             int        `json:"id" db:"id"`
	BookingEnabled bool       `json:"booking_enabled" db:"booking_enabled"`
	GoDate         *time.Time `json:"go_date" db:"go_date"`
	ReturnDate     *time.Time `json:"return_date" db:"return_date"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// SettingsResponse is the shape returned by GET /admin/settings
type SettingsResponse struct {
	BookingEnabled  bool           `json:"bookingEnabled"`
	GoDate          string         `json:"goDate"`
	ReturnDate      string         `json:"returnDate"`
	BusAvailability map[string]int `json:"busAvailability"`
}

// UpdateSettingsRequest is the partial update accepted by PATCH /admin/settings
type UpdateSettingsRequest struct {
	BookingEnabled  *bool          `json:"bookingEnabled,omitempty"`
	GoDate          *string        `json:"goDate,omitempty"`
	ReturnDate      *string        `json:"returnDate,omitempty"`
	BusAvailability map[string]int `json:"busAvailability,omitempty"`
}
