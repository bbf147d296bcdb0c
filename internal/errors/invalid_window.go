package errors

import "net/http"

var ErrInvalidWindow = &Exception{
	Code:       "invalid_window",
	Message:    "invalid KPI time window",
	StatusCode: http.StatusBadRequest,
}
