package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request failure
type Kind string

const (
	KindConfiguration      Kind = "ConfigurationError"
	KindMalformedRequest   Kind = "MalformedRequestError"
	KindGeneration         Kind = "GenerationError"
	KindSynthesisRequest   Kind = "SynthesisRequestError"
	KindAcquisitionTimeout Kind = "AcquisitionTimeoutError"
	KindInternal           Kind = "InternalError"
)

// statusByKind maps every kind to the HTTP status reported to the caller.
// Each failure is scoped to one request and reported as a server error.
var statusByKind = map[Kind]int{
	KindConfiguration:      http.StatusInternalServerError,
	KindMalformedRequest:   http.StatusInternalServerError,
	KindGeneration:         http.StatusInternalServerError,
	KindSynthesisRequest:   http.StatusInternalServerError,
	KindAcquisitionTimeout: http.StatusInternalServerError,
	KindInternal:           http.StatusInternalServerError,
}

// Error is a failure of one pipeline stage
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports kind equality so errors.Is(err, apperr.New(kind, "")) matches any error of that kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &Error{
		Kind:       kind,
		Message:    message,
		StatusCode: status,
	}
}

// WithCause attaches the underlying error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext attaches a diagnostic field that is logged but never sent to the caller
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func Configuration(message string, cause error) *Error {
	return New(KindConfiguration, message).WithCause(cause)
}

func MalformedRequest(message string, cause error) *Error {
	return New(KindMalformedRequest, message).WithCause(cause)
}

func Generation(message string, cause error) *Error {
	return New(KindGeneration, message).WithCause(cause)
}

func SynthesisRequest(message string, cause error) *Error {
	return New(KindSynthesisRequest, message).WithCause(cause)
}

func AcquisitionTimeout(message string, cause error) *Error {
	return New(KindAcquisitionTimeout, message).WithCause(cause)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.StatusCode != 0 {
		return e.StatusCode
	}
	return statusByKind[KindInternal]
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
