package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// admissionNumberPattern matches the fixed 7-character alphanumeric
// admission number format used by the college.
var admissionNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]{7}$`)

// Booking represents a student's bus-pass booking
type Booking struct {
	ID              string    `json:"id" db:"id"`
	AdmissionNumber string    `json:"admission_number" db:"admission_number"`
	StudentName     string    `json:"student_name" db:"student_name"`
	BusRoute        string    `json:"bus_route" db:"bus_route"`
	Destination     string    `json:"destination" db:"destination"`
	PaymentStatus   bool      `json:"payment_status" db:"payment_status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// CreateBookingRequest represents the request body for POST /bookings
type CreateBookingRequest struct {
	StudentName     string     `json:"studentName" binding:"required"`
	AdmissionNumber string     `json:"admissionNumber" binding:"required"`
	BusRoute        string     `json:"busRoute" binding:"required"`
	Destination     string     `json:"destination" binding:"required"`
	PaymentStatus   bool       `json:"paymentStatus"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

// UpdateBookingPaymentRequest flips a booking's payment status
type UpdateBookingPaymentRequest struct {
	ID            string `json:"id" binding:"required"`
	PaymentStatus *bool  `json:"payment_status" binding:"required"`
}

// BookingFilter holds the optional filters for the admin bookings list
type BookingFilter struct {
	Page          int
	Limit         int
	BusRoute      string
	PaymentStatus *bool
	StartDate     *time.Time
	EndDate       *time.Time
}

// Pagination describes a page of results
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// RouteCount is one entry of the per-route booking statistics
type RouteCount struct {
	Route string `json:"route"`
	Count int    `json:"count"`
}

// BookingStats summarizes bookings for the admin dashboard
type BookingStats struct {
	TotalBookings   int          `json:"totalBookings"`
	PaidBookings    int          `json:"paidBookings"`
	PendingBookings int          `json:"pendingBookings"`
	RecentBookings  int          `json:"recentBookings"`
	RouteStats      []RouteCount `json:"routeStats"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if strings.TrimSpace(r.StudentName) == "" {
		return errors.New("studentName is required")
	}

	if !admissionNumberPattern.MatchString(r.AdmissionNumber) {
		return errors.New("admissionNumber must be exactly 7 alphanumeric characters")
	}

	if strings.TrimSpace(r.BusRoute) == "" {
		return errors.New("busRoute is required")
	}

	if strings.TrimSpace(r.Destination) == "" {
		return errors.New("destination is required")
	}

	return nil
}

// Normalize applies page/limit defaults and bounds
func (f *BookingFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
}
