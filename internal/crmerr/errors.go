// Package crmerr classifies the errors leaddesk surfaces to its callers.
//
// Four kinds cover everything the data layer produces: transport failures
// talking to the CRM API, logical failures the API reports in its envelope,
// local validation failures, and durable storage failures. Callers branch on
// the kind (for example to decide whether a toast says "offline" or shows the
// API's message) and otherwise treat the error as opaque.
package crmerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for handling purposes.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors not produced by this package.
	KindUnknown Kind = iota
	// KindNetwork covers request failures, non-2xx responses and undecodable bodies.
	KindNetwork
	// KindAPI covers envelopes whose status is not "success".
	KindAPI
	// KindValidation covers local checks that run before any request is sent.
	KindValidation
	// KindStorage covers durable key-value failures and malformed stored JSON.
	KindStorage
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAPI:
		return "api"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Sentinel causes that can be matched with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrRequired     = errors.New("required field missing")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a classified error.
type Error struct {
	Kind    Kind
	Op      string // operation, e.g. "get_leads" or "uistate.persist"
	Field   string // validation only
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Field, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Network wraps a transport-level failure for op.
func Network(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// API builds an error for an envelope that reported a non-success status.
func API(op, message string) error {
	if message == "" {
		message = "request was not successful"
	}
	return &Error{Kind: KindAPI, Op: op, Message: message}
}

// Validation builds an error for a local input check on field.
func Validation(op, field, message string) error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: message, Err: ErrRequired}
}

// Storage wraps a durable storage failure for op.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsAPI reports whether err is an API-reported failure.
func IsAPI(err error) bool { return KindOf(err) == KindAPI }

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsStorage reports whether err is a durable storage failure.
func IsStorage(err error) bool { return KindOf(err) == KindStorage }

// UserMessage returns a short message suitable for a toast.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *Error
	if !errors.As(err, &ce) {
		return err.Error()
	}
	switch ce.Kind {
	case KindNetwork:
		return "Could not reach the CRM server"
	case KindAPI:
		return ce.Message
	case KindValidation:
		return fmt.Sprintf("%s: %s", ce.Field, ce.Message)
	case KindStorage:
		return "Saved view state could not be written"
	}
	return err.Error()
}
