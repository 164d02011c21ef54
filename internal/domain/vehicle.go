package domain

import (
	"time"

	"github.com/google/uuid"
)

// VehicleStatus is the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "AVAILABLE"
	VehicleOnTrip    VehicleStatus = "ON_TRIP"
	VehicleInShop    VehicleStatus = "IN_SHOP"
)

// Valid reports whether s is one of the known vehicle statuses.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleOnTrip, VehicleInShop:
		return true
	}
	return false
}

// Dispatchable reports whether a vehicle in this status may be assigned to a
// new trip. Only AVAILABLE vehicles qualify; IN_SHOP and ON_TRIP do not.
func (s VehicleStatus) Dispatchable() bool {
	return s == VehicleAvailable
}

// Vehicle is a truck or van in the fleet.
// Status is written by fleet admins (AVAILABLE <-> IN_SHOP) and by the trip
// lifecycle engine (AVAILABLE <-> ON_TRIP); the two never overlap because an
// ON_TRIP vehicle cannot be edited.
type Vehicle struct {
	ID           uuid.UUID
	LicensePlate string
	Model        string
	MaxCapacity  float64
	Status       VehicleStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
