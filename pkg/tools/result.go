package tools

import "fmt"

// Status tags the outcome of a tool invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorKind distinguishes classes of tool errors. Validation errors come
// from malformed input and never reach the data source; not-found errors
// mean the source had no data for a well-formed request.
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindNotFound   ErrorKind = "not_found"
)

// Result is the tagged value every tool adapter returns. Adapters never
// return Go errors to the model; failures are captured here so the
// reasoning layer can relay them conversationally.
type Result struct {
	Status  Status         `json:"status"`
	Kind    ErrorKind      `json:"kind,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// OK builds a success result carrying structured payload data.
func OK(data map[string]any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// OKMessage builds a success result that carries only a message.
func OKMessage(format string, args ...any) Result {
	return Result{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds a generic error result.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// ValidationErrorf builds an error result for malformed input.
func ValidationErrorf(format string, args ...any) Result {
	return Result{Status: StatusError, Kind: ErrorKindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundErrorf builds an error result for a missing record.
func NotFoundErrorf(format string, args ...any) Result {
	return Result{Status: StatusError, Kind: ErrorKindNotFound, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether the result is tagged as an error.
func (r Result) IsError() bool {
	return r.Status == StatusError
}
