package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized indicates the session is missing or expired (HTTP 401).
	ErrUnauthorized = errors.New("not authenticated")

	// ErrForbidden indicates the user's role may not perform the call (HTTP 403).
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound indicates the requested record does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timed out")
)

// NonFieldKey collects errors not attached to a form field.
const NonFieldKey = "non_field_errors"

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Detail     string
	Message    string
	Fields     map[string][]string
	// HTML is set when the backend answered with an HTML error page.
	HTML bool
	// SessionLost is set when a 401 ended the local session.
	SessionLost bool
}

func (e *Error) Error() string {
	switch {
	case e.HTML:
		return fmt.Sprintf("server error page (status %d)", e.StatusCode)
	case e.Detail != "":
		return fmt.Sprintf("%s (status %d)", e.Detail, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	case len(e.Fields) > 0:
		return fmt.Sprintf("%s (status %d)", strings.Join(e.FieldLines(), "; "), e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Unwrap maps well-known status codes onto the package sentinels.
func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// ServerError reports whether the failure is on the backend side.
func (e *Error) ServerError() bool {
	return e.HTML || e.StatusCode >= http.StatusInternalServerError
}

// FieldLines renders field errors as "field: msg1, msg2", sorted by field
// with non-field errors last.
func (e *Error) FieldLines() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		if k != NonFieldKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(e.Fields))
	for _, k := range keys {
		lines = append(lines, k+": "+strings.Join(e.Fields[k], ", "))
	}
	if msgs, ok := e.Fields[NonFieldKey]; ok {
		lines = append(lines, strings.Join(msgs, ", "))
	}
	return lines
}

func parseError(status int, header http.Header, body []byte) *Error {
	e := &Error{StatusCode: status}
	trimmed := bytes.TrimSpace(body)
	if strings.Contains(header.Get("Content-Type"), "text/html") || bytes.HasPrefix(trimmed, []byte("<")) {
		e.HTML = true
		return e
	}
	if len(trimmed) == 0 {
		return e
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		// A bare ValidationError renders as a JSON list of messages.
		var list []string
		if err := json.Unmarshal(trimmed, &list); err == nil {
			e.Fields = map[string][]string{NonFieldKey: list}
			return e
		}
		e.Message = string(trimmed)
		return e
	}

	for key, raw := range obj {
		switch key {
		case "detail":
			e.Detail = flatten(raw)
		case "message", "error":
			if e.Message == "" {
				e.Message = flatten(raw)
			}
		default:
			if e.Fields == nil {
				e.Fields = make(map[string][]string)
			}
			e.Fields[key] = messages(raw)
		}
	}
	return e
}

// messages decodes a field's error value, which may be a string, a list of
// strings or a nested object.
func messages(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return []string{flatten(raw)}
}

func flatten(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return string(raw)
}
