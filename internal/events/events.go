// Package events publishes committed trip status changes to downstream
// consumers. Publishing happens after the database transaction commits and is
// best effort: a failed publish is logged by the caller and never undoes the
// status change.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/fleetops/internal/domain"
)

// Publisher delivers trip events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, e domain.TripEvent) error
	Close() error
}

// Message is the JSON payload written to every sink.
type Message struct {
	EventID    int64     `json:"event_id"`
	TripID     string    `json:"trip_id"`
	VehicleID  string    `json:"vehicle_id"`
	DriverID   string    `json:"driver_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMessage converts a stored trip event into its wire form.
func NewMessage(e domain.TripEvent) Message {
	return Message{
		EventID:    e.ID,
		TripID:     e.TripID.String(),
		VehicleID:  e.VehicleID.String(),
		DriverID:   e.DriverID.String(),
		FromStatus: string(e.From),
		ToStatus:   string(e.To),
		OccurredAt: e.CreatedAt.UTC(),
	}
}

// Encode marshals the wire form of e.
func Encode(e domain.TripEvent) ([]byte, error) {
	body, err := json.Marshal(NewMessage(e))
	if err != nil {
		return nil, fmt.Errorf("events.Encode: %w", err)
	}
	return body, nil
}

// RoutingKey is the topic a trip event is published under,
// e.g. "trip.status.dispatched".
func RoutingKey(e domain.TripEvent) string {
	return "trip.status." + strings.ToLower(string(e.To))
}

// Nop discards every event. It is the default when no sink is configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.TripEvent) error { return nil }
func (Nop) Close() error                                    { return nil }

// LogPublisher writes every event to a structured logger. Useful in
// development and with the in-memory store.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher returns a LogPublisher writing to log.
func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, e domain.TripEvent) error {
	m := NewMessage(e)
	p.log.InfoContext(ctx, "trip event",
		"routing_key", RoutingKey(e),
		"event_id", m.EventID,
		"trip_id", m.TripID,
		"vehicle_id", m.VehicleID,
		"from", m.FromStatus,
		"to", m.ToStatus,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
