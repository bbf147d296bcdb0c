package errors

import "net/http"

var ErrValidation = &Exception{
	Code:       "validation",
	Message:    "invalid request",
	StatusCode: http.StatusBadRequest,
}

var ErrTaskIDRequired = ErrValidation.Withf("task id is required")

var ErrInvalidJSON = ErrValidation.Withf("invalid JSON payload")
