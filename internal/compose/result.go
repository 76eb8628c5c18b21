package compose

import (
	"context"
	"errors"
	"fmt"

	"github.com/gutp/discux/internal/adapters/contentapi"
)

// Status is the overall outcome of a composition.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Outcome records how a single slot was filled.
type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeDefaulted Outcome = "defaulted"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// Reasons shown when a REQUIRED slot fails for other reasons than a missing entity.
const (
	ReasonUpstream  = "The content service could not be reached, please try again later."
	ReasonTimeout   = "The content service took too long to answer, please try again later."
	ReasonMalformed = "The content service sent an answer that could not be read."
)

// ErrDependencyUnavailable marks a slot whose dependency did not resolve to a value.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// SlotError describes the REQUIRED slot that failed a composition.
type SlotError struct {
	Page   string
	Slot   string
	Action string
	Reason string
	// Empty is true when the slot failed because the content API matched nothing.
	Empty bool
	// Err is the transport, decode or dependency failure; nil when Empty.
	Err error
}

func (e *SlotError) Error() string {
	if e.Empty {
		return fmt.Sprintf("compose %s: required slot %q is empty", e.Page, e.Slot)
	}
	return fmt.Sprintf("compose %s: required slot %q: %v", e.Page, e.Slot, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }

// ErrorSignal returns the action and reason shown on the error page.
func (e *SlotError) ErrorSignal() (string, string) {
	action := e.Action
	if action == "" {
		action = "Load " + e.Page
	}
	if e.Empty || errors.Is(e.Err, ErrDependencyUnavailable) {
		if e.Reason != "" {
			return action, e.Reason
		}
		return action, "Not found."
	}
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded):
		return action, ReasonTimeout
	case !contentapi.IsTransport(e.Err):
		return action, ReasonMalformed
	default:
		return action, ReasonUpstream
	}
}

// Result maps slot names to resolved values.
type Result struct {
	Page     string
	Status   Status
	Failure  *SlotError
	values   map[string]any
	outcomes map[string]Outcome
}

// Value returns the raw value of slot.
func (r *Result) Value(slot string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[slot]
	return v, ok
}

// Outcome reports how slot was filled.
func (r *Result) Outcome(slot string) Outcome {
	if r == nil {
		return ""
	}
	return r.outcomes[slot]
}

// Get returns slot as T, or the zero T when the slot is missing or of another type.
func Get[T any](r *Result, slot string) T {
	v, _ := r.Value(slot)
	t, _ := v.(T)
	return t
}
