package errors

import "net/http"

var ErrForbidden = &Exception{
	Code:       "forbidden",
	Message:    "caller is neither the task owner nor an administrator",
	StatusCode: http.StatusForbidden,
}

var ErrUnauthorized = &Exception{
	Code:       "unauthorized",
	Message:    "missing or invalid credentials",
	StatusCode: http.StatusUnauthorized,
}
