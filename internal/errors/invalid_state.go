package errors

import "net/http"

var ErrInvalidState = &Exception{
	Code:       "invalid_state",
	Message:    "transition not allowed from the current task state",
	StatusCode: http.StatusConflict,
}

var ErrTaskClosed = ErrInvalidState.Withf("task is closed")

var ErrNotEscalated = ErrInvalidState.Withf("task is not escalated")
