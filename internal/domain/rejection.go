package domain

import "errors"

// RejectionReason is the client-facing explanation for a refused dispatch.
type RejectionReason string

const (
	ReasonVehicleUnavailable RejectionReason = "vehicle unavailable"
	ReasonDriverUnavailable  RejectionReason = "driver unavailable"
	ReasonLicenseExpired     RejectionReason = "license expired"
	ReasonDriverBusy         RejectionReason = "driver busy"
	ReasonCapacityExceeded   RejectionReason = "capacity exceeded"
)

// ErrDispatchRejected is the sentinel every *RejectionError unwraps to, so
// callers that only care about the category can use errors.Is.
var ErrDispatchRejected = errors.New("dispatch rejected")

// RejectionError carries the single reason a dispatch was refused.
// It is a client fault and must never be retried automatically.
type RejectionError struct {
	Reason RejectionReason
}

// Reject builds a *RejectionError for reason.
func Reject(reason RejectionReason) *RejectionError {
	return &RejectionError{Reason: reason}
}

func (e *RejectionError) Error() string {
	return "dispatch rejected: " + string(e.Reason)
}

func (e *RejectionError) Unwrap() error {
	return ErrDispatchRejected
}

// RejectionOf extracts the rejection reason from err, if any.
func RejectionOf(err error) (RejectionReason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
