package domain

import (
	"fmt"
	"strings"
)

// InvalidInputError is returned when a caller supplied name can't be searched.
type InvalidInputError struct {
	Message string
	Value   string
}

// NewInvalidInputError creates an InvalidInputError carrying the offending value.
func NewInvalidInputError(message, value string) *InvalidInputError {
	return &InvalidInputError{Message: message, Value: value}
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// UpstreamError describes a failed call to the metadata provider.
// It keeps enough request/response context for a postmortem and is never
// shown verbatim to API callers.
type UpstreamError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Method != "" || e.URL != "" {
		fmt.Fprintf(&sb, " [%s %s]", e.Method, e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " status %d", e.StatusCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
