package handler

import (
	"net/http"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/fleetops/internal/domain"
)

// CreateVehicle handles POST /vehicles.
func (s *Server) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var body VehicleRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	created, err := s.vehicles.Create(r.Context(), requestToVehicle(openapi_types.UUID{}, body))
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusCreated, vehicleToResponse(created))
}

// ListVehicles handles GET /vehicles with ?page=, ?limit= and ?status=.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	q, err := bindListParams(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	var status domain.VehicleStatus
	if q.Status != nil {
		status = domain.VehicleStatus(strings.ToUpper(strings.TrimSpace(*q.Status)))
	}

	params := domain.NewPaginationParams(q.Page, q.Limit)
	vehicles, total, err := s.vehicles.ListPaged(r.Context(), status, params)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	data := make([]Vehicle, len(vehicles))
	for i, v := range vehicles {
		data[i] = vehicleToResponse(v)
	}
	writeJSON(w, http.StatusOK, VehicleList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetVehicle handles GET /vehicles/{id}.
func (s *Server) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	v, err := s.vehicles.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, vehicleToResponse(v))
}

// UpdateVehicle handles PUT /vehicles/{id}.
func (s *Server) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	var body VehicleRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	updated, err := s.vehicles.Update(r.Context(), requestToVehicle(id, body))
	if err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, vehicleToResponse(updated))
}

// DeleteVehicle handles DELETE /vehicles/{id}.
func (s *Server) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	if err := s.vehicles.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "vehicle not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func requestToVehicle(id openapi_types.UUID, body VehicleRequest) domain.Vehicle {
	v := domain.Vehicle{
		ID:           id,
		LicensePlate: body.LicensePlate,
		MaxCapacity:  body.MaxCapacity,
	}
	if body.Model != nil {
		v.Model = *body.Model
	}
	if body.Status != nil {
		v.Status = domain.VehicleStatus(strings.ToUpper(strings.TrimSpace(*body.Status)))
	}
	return v
}

func vehicleToResponse(v domain.Vehicle) Vehicle {
	resp := Vehicle{
		Id:           v.ID,
		LicensePlate: v.LicensePlate,
		MaxCapacity:  v.MaxCapacity,
		Status:       string(v.Status),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	if v.Model != "" {
		resp.Model = &v.Model
	}
	return resp
}
