package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Exception is an error with a stable category code and the HTTP status it
// maps to. Two exceptions match under errors.Is when their codes match, so
// callers can attach detail with Withf and still test against the sentinel.
type Exception struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

func (e *Exception) Is(target error) bool {
	var other *Exception
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Withf returns a copy of e carrying a more specific message.
func (e *Exception) Withf(format string, args ...any) *Exception {
	return &Exception{
		Code:       e.Code,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: e.StatusCode,
	}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func Code(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "internal"
}
