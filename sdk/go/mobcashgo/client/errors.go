package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the client.
var (
	ErrNoBaseURL         = errors.New("api base url is not configured")
	ErrCredentialExpired = errors.New("stored credential has expired, log in again")
)

// HTTPError is returned for every non-2xx response.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   []byte
	// Detail is the human-readable message from the body, if the server sent one.
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Message returns Detail, or fallback when the server did not explain itself.
func (e *HTTPError) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// ShapeError means a 2xx response did not have the expected structure.
type ShapeError struct {
	Op     string
	Reason string
	Body   []byte
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected response shape for %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected response shape for %s: %s", e.Op, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure that happened before any response was read.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorMessage picks the text to show an operator for err: the server detail of an
// HTTPError when present, otherwise fallback.
func ErrorMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message(fallback)
	}
	return fallback
}

// detailFromBody reads the optional "detail" field of an error body, falling back
// to an "error" field.
func detailFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
