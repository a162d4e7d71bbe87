package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinels matched by errors.Is against *Error.
var (
	ErrBadRequest   = errors.New("backend: bad request")
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrForbidden    = errors.New("backend: forbidden")
	ErrNotFound     = errors.New("backend: not found")
	ErrUnavailable  = errors.New("backend: unavailable")
)

const unavailableMessage = "The backend service is unavailable. Please try again."

// Error is a failed backend call. Status is zero when no response arrived.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend: %s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("backend: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is maps HTTP statuses onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnavailable:
		return e.Status == 0 || e.Status >= http.StatusInternalServerError
	}
	return false
}

// UserMessage is the text shown to operators for this failure.
func (e *Error) UserMessage() string {
	if e.Status == 0 || e.Status >= http.StatusInternalServerError {
		return unavailableMessage
	}
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeError(method, path string, resp *http.Response) *Error {
	apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = strings.TrimSpace(body.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(body.Error)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
