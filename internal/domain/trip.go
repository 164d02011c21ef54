// Package domain contains the core data types for the fleet dispatch backend.
// This package has no infrastructure dependencies and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TripStatus is the position of a trip in its lifecycle.
type TripStatus string

const (
	TripDraft      TripStatus = "DRAFT"
	TripDispatched TripStatus = "DISPATCHED"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Valid reports whether s is one of the known trip statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripDraft, TripDispatched, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is an end state (COMPLETED or CANCELLED).
func (s TripStatus) Terminal() bool {
	return s == TripCompleted || s == TripCancelled
}

// HoldsVehicle reports whether a trip in this status owns its vehicle,
// i.e. the vehicle must be ON_TRIP while the trip stays here.
func (s TripStatus) HoldsVehicle() bool {
	return s == TripDispatched
}

// ParseTripStatus converts user input (case-insensitive) into a TripStatus.
func ParseTripStatus(raw string) (TripStatus, error) {
	s := TripStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown trip status %q", ErrValidation, raw)
	}
	return s, nil
}

// Trip binds one vehicle and one driver to a cargo load.
// ClosedAt is nil until the trip reaches a terminal status.
type Trip struct {
	ID          uuid.UUID
	VehicleID   uuid.UUID
	DriverID    uuid.UUID
	CargoWeight float64
	Status      TripStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// TripFilter narrows trip listings. A zero value matches every trip.
type TripFilter struct {
	Status TripStatus
}

// TripEvent is one row of a trip's audit log, written in the same
// transaction as the status change it records. From is empty for the event
// that creates the trip.
type TripEvent struct {
	ID        int64
	TripID    uuid.UUID
	VehicleID uuid.UUID
	DriverID  uuid.UUID
	From      TripStatus
	To        TripStatus
	CreatedAt time.Time
}
