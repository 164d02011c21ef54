package handler

import (
	"net/http"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/fleetops/internal/domain"
)

// CreateDriver handles POST /drivers.
func (s *Server) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var body DriverRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	created, err := s.drivers.Create(r.Context(), requestToDriver(openapi_types.UUID{}, body))
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusCreated, driverToResponse(created))
}

// ListDrivers handles GET /drivers with ?page=, ?limit= and ?status=.
func (s *Server) ListDrivers(w http.ResponseWriter, r *http.Request) {
	q, err := bindListParams(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	var status domain.DriverStatus
	if q.Status != nil {
		status = domain.DriverStatus(strings.ToUpper(strings.TrimSpace(*q.Status)))
	}

	params := domain.NewPaginationParams(q.Page, q.Limit)
	drivers, total, err := s.drivers.ListPaged(r.Context(), status, params)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	data := make([]Driver, len(drivers))
	for i, d := range drivers {
		data[i] = driverToResponse(d)
	}
	writeJSON(w, http.StatusOK, DriverList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetDriver handles GET /drivers/{id}.
func (s *Server) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	d, err := s.drivers.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, driverToResponse(d))
}

// UpdateDriver handles PUT /drivers/{id}.
func (s *Server) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	var body DriverRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	updated, err := s.drivers.Update(r.Context(), requestToDriver(id, body))
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, driverToResponse(updated))
}

// DeleteDriver handles DELETE /drivers/{id}.
func (s *Server) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	if err := s.drivers.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func requestToDriver(id openapi_types.UUID, body DriverRequest) domain.Driver {
	d := domain.Driver{
		ID:            id,
		Name:          body.Name,
		LicenseNumber: body.LicenseNumber,
		SafetyScore:   body.SafetyScore,
	}
	if body.LicenseExpiry != nil {
		d.LicenseExpiry = body.LicenseExpiry.Time
	}
	if body.Status != nil {
		d.Status = domain.DriverStatus(strings.ToUpper(strings.TrimSpace(*body.Status)))
	}
	return d
}

func driverToResponse(d domain.Driver) Driver {
	return Driver{
		Id:            d.ID,
		Name:          d.Name,
		LicenseNumber: d.LicenseNumber,
		LicenseExpiry: openapi_types.Date{Time: d.LicenseExpiry},
		SafetyScore:   d.SafetyScore,
		Status:        string(d.Status),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
