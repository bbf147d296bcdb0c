package errors

import "net/http"

// ErrConflict is returned when a concurrent mutation committed first. It is
// the one category callers are expected to retry.
var ErrConflict = &Exception{
	Code:       "conflict",
	Message:    "optimistic locking conflict",
	StatusCode: http.StatusConflict,
}
