package ergo

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an upstream failure for the tool surface.
type ErrorKind string

const (
	KindTransport        ErrorKind = "transport_failure"
	KindHTTPStatus       ErrorKind = "http_status"
	KindDecode           ErrorKind = "decode_failure"
	KindUpstreamSemantic ErrorKind = "upstream_semantic"
	KindNotFound         ErrorKind = "not_found"
	KindInputValidation  ErrorKind = "input_validation"
	KindPartialResult    ErrorKind = "partial_result"
	KindCancelled        ErrorKind = "cancelled"
	KindUnsupported      ErrorKind = "unsupported"
)

// APIError is the typed failure every engine bubbles up. The tool surface
// converts it into a status=error envelope; raw upstream payloads never
// reach the caller.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int    // set for KindHTTPStatus
	Endpoint   string // the request path that produced the error
	Err        error  // wrapped cause, may be nil
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP error: %d", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// NewError builds an APIError with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *APIError {
	return &APIError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsAPIError extracts an *APIError from err, wrapping foreign errors as
// transport failures so callers always see a classified kind.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Kind: KindTransport, Message: err.Error(), Err: err}
}

// IsNotFound reports whether err is an APIError of kind NotFound.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}
