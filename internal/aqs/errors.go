package aqs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the client.
var (
	// ErrNoCredentials is returned when no email/key pair can be obtained.
	ErrNoCredentials = errors.New("no AQS credentials available")

	// ErrInvalidMonth is returned for month values outside 1-12.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidDateFormat is returned for dates that are not 8-digit YYYYMMDD.
	ErrInvalidDateFormat = errors.New("date must be 8 digits (YYYYMMDD)")

	// ErrDateOutOfBounds is returned for dates before 1970 or after today.
	ErrDateOutOfBounds = errors.New("date outside available AQS range")

	// ErrGeoOutOfBounds is returned for coordinates beyond the valid globe.
	ErrGeoOutOfBounds = errors.New("coordinate out of bounds")
)

// UnknownServiceError reports a service name absent from the registry,
// carrying the valid names for user feedback.
type UnknownServiceError struct {
	Service string
	Valid   []string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q (valid: %s)", e.Service, strings.Join(e.Valid, ", "))
}

// UnknownFilterError reports a filter name invalid for its service.
type UnknownFilterError struct {
	Service string
	Filter  string
	Valid   []string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("unknown filter %q for service %q (valid: %s)",
		e.Filter, e.Service, strings.Join(e.Valid, ", "))
}

// UnresolvedCodeError reports a value that matched neither a code nor a
// represented value in the server's code list. Candidates carries the full
// list so the caller can present valid options.
type UnresolvedCodeError struct {
	Kind       string
	Value      string
	Candidates CodeTable
}

func (e *UnresolvedCodeError) Error() string {
	return fmt.Sprintf("no %s code matches %q (%d candidates)", e.Kind, e.Value, len(e.Candidates))
}

// FieldError names one parameter that failed validation.
type FieldError struct {
	Param  string
	Value  string
	Reason string
	Err    error
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s=%q: %s", e.Param, e.Value, e.Reason)
}

// ValidationError aggregates every parameter failure for one request. All
// parameter checks run before the verdict, so Fields names every offender.
type ValidationError struct {
	Service string
	Filter  string
	Missing []string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required: "+strings.Join(e.Missing, ", "))
	}
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("invalid request %s/%s: %s", e.Service, e.Filter, strings.Join(parts, "; "))
}

// RangeError reports an unusable begin/end date range.
type RangeError struct {
	Begin  string
	End    string
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid date range %s-%s: %s", e.Begin, e.End, e.Reason)
}

// TransportError wraps a failure to complete a remote call or decode its
// payload.
type TransportError struct {
	Service string
	Filter  string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("AQS request %s/%s failed: %v", e.Service, e.Filter, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
