package checkout

import (
	"errors"
	"fmt"
)

// ErrSubmissionInFlight rejects re-entrant submits while one is running.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// ValidationError covers pre-flight failures: the submission is refused
// before any write reaches the order API.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	ErrNoAddress    = &ValidationError{Reason: "no delivery address selected"}
	ErrEmptyCart    = &ValidationError{Reason: "cart is empty, nothing to submit"}
	ErrNoRestaurant = &ValidationError{Reason: "cannot resolve restaurant from cart"}
)

// NetworkError wraps a failed order API call. These are surfaced to the user
// with a retry affordance; nothing retries automatically.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PartialSubmissionError means the order record was created but a later step
// failed. The order persists server-side in an incomplete state; Completed
// names the steps that went through before FailedStep broke the sequence.
type PartialSubmissionError struct {
	OrderID    int64
	FailedStep Step
	Completed  []Step
	Err        error
}

func (e *PartialSubmissionError) Error() string {
	return fmt.Sprintf("order %d persisted but step %s failed: %v", e.OrderID, e.FailedStep, e.Err)
}

func (e *PartialSubmissionError) Unwrap() error {
	return e.Err
}
