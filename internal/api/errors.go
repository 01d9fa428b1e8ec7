package api

import (
	"encoding/json"
	"errors"
	"strings"

	"fintrack/internal/core"
)

// ErrUnauthenticated is returned when the API answers 401 to a call made
// with the session token. Callers clear the session and send the user to
// the login page.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrMalformedData is the sentinel behind every MalformedDataError.
var ErrMalformedData = core.ErrMalformedData

// RequestError is a failed call: a non-2xx status, or a transport failure
// when Status is 0. Message is safe to show to the user.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

// MalformedDataError reports a 2xx body whose shape does not match the
// endpoint's schema.
type MalformedDataError struct {
	What string
	Err  error
}

func (e *MalformedDataError) Error() string {
	if e.Err != nil {
		return "malformed " + e.What + ": " + e.Err.Error()
	}
	return "malformed " + e.What
}

func (e *MalformedDataError) Is(target error) bool { return target == ErrMalformedData }

func (e *MalformedDataError) Unwrap() error { return e.Err }

func malformed(what, format string) *MalformedDataError {
	return &MalformedDataError{What: what, Err: errors.New(format)}
}

// serverMessage pulls the human readable message out of an error body,
// falling back when the body has none.
func serverMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if m := strings.TrimSpace(payload.Message); m != "" {
			return m
		}
		if m := strings.TrimSpace(payload.Error); m != "" {
			return m
		}
	}
	return fallback
}
