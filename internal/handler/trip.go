package handler

import (
	"net/http"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/service"
)

// DispatchTrip handles POST /trips.
// With "draft": true the trip is planned (DRAFT) instead of dispatched.
func (s *Server) DispatchTrip(w http.ResponseWriter, r *http.Request) {
	var body DispatchTripRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	req := service.DispatchRequest{
		VehicleID:   body.VehicleId,
		DriverID:    body.DriverId,
		CargoWeight: body.CargoWeight,
	}

	create := s.trips.Dispatch
	if body.Draft != nil && *body.Draft {
		create = s.trips.Plan
	}
	trip, err := create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// ListTrips handles GET /trips.
// Supports ?page=, ?limit= (defaults: page=1, limit=20, max=100) and ?status=.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	q, err := bindListParams(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	var f domain.TripFilter
	if q.Status != nil && *q.Status != "" {
		if f.Status, err = domain.ParseTripStatus(*q.Status); err != nil {
			s.writeError(w, r, err, "")
			return
		}
	}

	params := domain.NewPaginationParams(q.Page, q.Limit)
	trips, total, err := s.trips.ListPaged(r.Context(), f, params)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTripStatus handles PUT /trips/{id}/status.
func (s *Server) UpdateTripStatus(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	var body UpdateTripStatusRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	status, err := domain.ParseTripStatus(body.Status)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	trip, err := s.trips.UpdateStatus(r.Context(), id, status)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// ListTripEvents handles GET /trips/{id}/events.
func (s *Server) ListTripEvents(w http.ResponseWriter, r *http.Request) {
	id, err := bindID(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}
	evs, err := s.trips.Events(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}

	data := make([]TripEvent, len(evs))
	for i, e := range evs {
		data[i] = eventToResponse(e)
	}
	writeJSON(w, http.StatusOK, TripEventList{Data: data})
}

// --- mapping helpers --------------------------------------------------------

func tripToResponse(t domain.Trip) Trip {
	return Trip{
		Id:          t.ID,
		VehicleId:   t.VehicleID,
		DriverId:    t.DriverID,
		CargoWeight: t.CargoWeight,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		ClosedAt:    t.ClosedAt,
	}
}

func eventToResponse(e domain.TripEvent) TripEvent {
	resp := TripEvent{
		Id:        e.ID,
		TripId:    e.TripID,
		VehicleId: e.VehicleID,
		DriverId:  e.DriverID,
		ToStatus:  string(e.To),
		CreatedAt: e.CreatedAt,
	}
	if e.From != "" {
		from := string(e.From)
		resp.FromStatus = &from
	}
	return resp
}
