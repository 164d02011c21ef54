package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/looplab/fsm"

	"github.com/pkordes/fleetops/internal/domain"
)

// TransitionPolicy selects which trip status changes are allowed.
type TransitionPolicy string

const (
	// PolicyStrict allows only the transitions in tripEvents.
	PolicyStrict TransitionPolicy = "strict"
	// PolicyLegacy allows any change between distinct statuses, including
	// leaving COMPLETED or CANCELLED. Vehicle effects still apply.
	PolicyLegacy TransitionPolicy = "legacy"
)

// ParseTransitionPolicy accepts "strict" or "legacy" (case-insensitive).
// An empty string means strict.
func ParseTransitionPolicy(raw string) (TransitionPolicy, error) {
	switch p := TransitionPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PolicyStrict, nil
	case PolicyStrict, PolicyLegacy:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown transition policy %q", domain.ErrValidation, raw)
}

// VehicleEffect is what a trip transition does to the trip's vehicle.
type VehicleEffect int

const (
	EffectNone    VehicleEffect = iota
	EffectAcquire               // AVAILABLE -> ON_TRIP
	EffectRelease               // ON_TRIP -> AVAILABLE
)

func (e VehicleEffect) String() string {
	switch e {
	case EffectAcquire:
		return "acquire"
	case EffectRelease:
		return "release"
	}
	return "none"
}

// Transition is a planned trip status change. NoOp is set when the trip is
// already in the requested status; nothing should be written.
type Transition struct {
	From   domain.TripStatus
	To     domain.TripStatus
	Effect VehicleEffect
	NoOp   bool
}

const (
	eventDispatch = "dispatch"
	eventComplete = "complete"
	eventCancel   = "cancel"
)

var tripEvents = fsm.Events{
	{Name: eventDispatch, Src: []string{string(domain.TripDraft)}, Dst: string(domain.TripDispatched)},
	{Name: eventComplete, Src: []string{string(domain.TripDispatched)}, Dst: string(domain.TripCompleted)},
	{Name: eventCancel, Src: []string{string(domain.TripDraft), string(domain.TripDispatched)}, Dst: string(domain.TripCancelled)},
}

// eventByTarget maps a requested target status to the event that reaches it.
var eventByTarget = map[domain.TripStatus]string{
	domain.TripDispatched: eventDispatch,
	domain.TripCompleted:  eventComplete,
	domain.TripCancelled:  eventCancel,
}

// PlanTransition decides whether a trip in from may move to to under policy,
// and what that does to the vehicle. Disallowed changes return
// domain.ErrInvalidTransition.
func PlanTransition(ctx context.Context, policy TransitionPolicy, from, to domain.TripStatus) (Transition, error) {
	if from == to {
		return Transition{From: from, To: to, NoOp: true}, nil
	}
	if policy == PolicyLegacy {
		return legacyTransition(from, to), nil
	}
	return strictTransition(ctx, from, to)
}

func strictTransition(ctx context.Context, from, to domain.TripStatus) (Transition, error) {
	event, ok := eventByTarget[to]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}

	t := Transition{From: from, To: to}
	effect := func(e VehicleEffect) fsm.Callback {
		return func(_ context.Context, _ *fsm.Event) { t.Effect = e }
	}
	machine := fsm.NewFSM(string(from), tripEvents, fsm.Callbacks{
		"leave_" + string(domain.TripDispatched): effect(EffectRelease),
		"enter_" + string(domain.TripDispatched): effect(EffectAcquire),
	})
	if err := machine.Event(ctx, event); err != nil {
		return Transition{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	return t, nil
}

func legacyTransition(from, to domain.TripStatus) Transition {
	t := Transition{From: from, To: to}
	switch {
	case from.HoldsVehicle():
		t.Effect = EffectRelease
	case to.HoldsVehicle():
		t.Effect = EffectAcquire
	}
	return t
}
