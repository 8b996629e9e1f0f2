package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrEmptyOrder         = errors.New("empty order")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrTransitionRejected = errors.New("transition rejected")
	ErrNetworkFailure     = errors.New("network failure")

	ErrSellerMismatch       = errors.New("products belong to different sellers")
	ErrInFlight             = errors.New("request already in flight")
	ErrCustomOrdersDisabled = errors.New("seller does not accept custom orders")
	ErrSubmissionRejected   = errors.New("submission rejected")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
)

// OpError attaches the failing operation and entity to a sentinel
type OpError struct {
	Op      string // e.g. "client.SaveOrder"
	ID      int64  // entity involved, 0 if none
	Message string // backend or user facing detail
	Err     error
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.ID != 0 {
		msg += fmt.Sprintf(" [%d]", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *OpError) Unwrap() error { return e.Err }

// NeedsLogin reports whether the caller should be sent to the login flow
func NeedsLogin(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsUserCorrectable local validation failures the user fixes by editing input
func IsUserCorrectable(err error) bool {
	return errors.Is(err, ErrEmptyOrder) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrSellerMismatch)
}

// UserMessage turns any error of this package into an actionable message
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var op *OpError
	detail := ""
	if errors.As(err, &op) && op.Message != "" {
		detail = ": " + op.Message
	}
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "Please log in to continue"
	case errors.Is(err, ErrEmptyOrder):
		return "Add at least one product before placing the order"
	case errors.Is(err, ErrInvalidQuantity):
		return "Quantity must be a whole number of at least 1"
	case errors.Is(err, ErrSellerMismatch):
		return "A cart can only hold products of one seller"
	case errors.Is(err, ErrTransitionRejected):
		return "This status change is not allowed" + detail
	case errors.Is(err, ErrInFlight):
		return "Please wait, the previous request is still running"
	case errors.Is(err, ErrCustomOrdersDisabled):
		return "This seller does not accept custom orders"
	case errors.Is(err, ErrSubmissionRejected):
		return "Something went wrong" + detail
	case errors.Is(err, ErrNetworkFailure):
		return "Could not reach the marketplace, please try again"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrInvalidInput):
		return "Please check the entered values" + detail
	}
	return "Unexpected error: " + err.Error()
}
