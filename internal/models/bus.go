package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// routeCodePattern matches short route identifiers such as "R1" or "R12".
var routeCodePattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,16}$`)

// Bus represents a college bus and its route
type Bus struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	RouteCode  string    `json:"route_code" db:"route_code"`
	TotalSeats int       `json:"total_seats" db:"total_seats"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// RouteAvailability holds the remaining seat count for a route
type RouteAvailability struct {
	ID             int       `json:"id" db:"id"`
	BusRoute       string    `json:"bus_route" db:"bus_route"`
	AvailableSeats int       `json:"available_seats" db:"available_seats"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CreateBusRequest represents the request to create a bus
type CreateBusRequest struct {
	Name       string `json:"name" binding:"required"`
	RouteCode  string `json:"route_code" binding:"required"`
	TotalSeats int    `json:"total_seats"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

// UpdateBusRequest represents the request to update a bus
type UpdateBusRequest struct {
	ID         string  `json:"id" binding:"required"`
	Name       *string `json:"name,omitempty"`
	TotalSeats *int    `json:"total_seats,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// DefaultTotalSeats is used when a bus is created without an explicit capacity.
const DefaultTotalSeats = 10

// Validate validates the create bus request
func (r *CreateBusRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}

	if !routeCodePattern.MatchString(r.RouteCode) {
		return errors.New("route_code must be 1-16 alphanumeric characters")
	}

	if r.TotalSeats < 0 {
		return errors.New("total_seats cannot be negative")
	}

	return nil
}

// Validate validates the update bus request
func (r *UpdateBusRequest) Validate() error {
	if r.Name == nil && r.TotalSeats == nil && r.IsActive == nil {
		return errors.New("no fields to update")
	}

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("name cannot be empty")
	}

	if r.TotalSeats != nil && *r.TotalSeats < 0 {
		return errors.New("total_seats cannot be negative")
	}

	return nil
}
