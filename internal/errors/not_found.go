package errors

import "net/http"

var ErrNotFound = &Exception{
	Code:       "not_found",
	Message:    "resource not found",
	StatusCode: http.StatusNotFound,
}

var ErrTaskNotFound = ErrNotFound.Withf("task not found")

var ErrUserNotFound = ErrNotFound.Withf("user not found")
