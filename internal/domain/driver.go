package domain

import (
	"time"

	"github.com/google/uuid"
)

// DriverStatus is whether a driver is currently working.
type DriverStatus string

const (
	DriverOnDuty  DriverStatus = "ON_DUTY"
	DriverOffDuty DriverStatus = "OFF_DUTY"
)

// Valid reports whether s is one of the known driver statuses.
func (s DriverStatus) Valid() bool {
	return s == DriverOnDuty || s == DriverOffDuty
}

// Driver is a licensed operator who can be assigned to trips.
// The trip lifecycle engine only reads drivers; it never changes their status.
type Driver struct {
	ID            uuid.UUID
	Name          string
	LicenseNumber string
	LicenseExpiry time.Time // calendar date, time-of-day ignored
	SafetyScore   float64
	Status        DriverStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LicenseExpiredOn reports whether the license expiry date falls strictly
// before the calendar date of day. A license expiring today is still valid.
func (d Driver) LicenseExpiredOn(day time.Time) bool {
	return DateOf(d.LicenseExpiry).Before(DateOf(day))
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, dd := t.UTC().Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
