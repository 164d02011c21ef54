package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types for the JSON API. Field names and tags mirror the schemas in
// openapi/openapi.yaml; keep the two in sync.

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type Vehicle struct {
	Id           openapi_types.UUID `json:"id"`
	LicensePlate string             `json:"license_plate"`
	Model        *string            `json:"model,omitempty"`
	MaxCapacity  float64            `json:"max_capacity"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type VehicleRequest struct {
	LicensePlate string  `json:"license_plate"`
	Model        *string `json:"model,omitempty"`
	MaxCapacity  float64 `json:"max_capacity"`
	Status       *string `json:"status,omitempty"`
}

type VehicleList struct {
	Data       []Vehicle  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Driver struct {
	Id            openapi_types.UUID `json:"id"`
	Name          string             `json:"name"`
	LicenseNumber string             `json:"license_number"`
	LicenseExpiry openapi_types.Date `json:"license_expiry"`
	SafetyScore   float64            `json:"safety_score"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type DriverRequest struct {
	Name          string              `json:"name"`
	LicenseNumber string              `json:"license_number"`
	LicenseExpiry *openapi_types.Date `json:"license_expiry"`
	SafetyScore   float64             `json:"safety_score"`
	Status        *string             `json:"status,omitempty"`
}

type DriverList struct {
	Data       []Driver   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Trip struct {
	Id          openapi_types.UUID `json:"id"`
	VehicleId   openapi_types.UUID `json:"vehicle_id"`
	DriverId    openapi_types.UUID `json:"driver_id"`
	CargoWeight float64            `json:"cargo_weight"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	ClosedAt    *time.Time         `json:"closed_at,omitempty"`
}

// DispatchTripRequest is the body of POST /trips. Draft plans the trip
// without dispatching it.
type DispatchTripRequest struct {
	VehicleId   openapi_types.UUID `json:"vehicle_id"`
	DriverId    openapi_types.UUID `json:"driver_id"`
	CargoWeight float64            `json:"cargo_weight"`
	Draft       *bool              `json:"draft,omitempty"`
}

type UpdateTripStatusRequest struct {
	Status string `json:"status"`
}

type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type TripEvent struct {
	Id         int64              `json:"id"`
	TripId     openapi_types.UUID `json:"trip_id"`
	VehicleId  openapi_types.UUID `json:"vehicle_id"`
	DriverId   openapi_types.UUID `json:"driver_id"`
	FromStatus *string            `json:"from_status,omitempty"`
	ToStatus   string             `json:"to_status"`
	CreatedAt  time.Time          `json:"created_at"`
}

type TripEventList struct {
	Data []TripEvent `json:"data"`
}
