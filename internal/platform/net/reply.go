package net

import (
	"net/http"

	perr "bugprint/internal/platform/errors"
)

// Wire is the envelope every JSON response is written in
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Reply builds a success envelope for status
func Reply(status int, data any, reqID string) Wire {
	return Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// Error maps err to its status and error envelope; a nil err is a 200
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return http.StatusOK, Reply(http.StatusOK, nil, reqID)
	}
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		Field:      w.Field,
		RequestID:  reqID,
	}
}
