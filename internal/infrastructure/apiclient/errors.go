package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// UnknownErrorMessage is shown whenever the API gives no usable message.
const UnknownErrorMessage = "Unknown error occurred"

// ErrorInfo is the error shape surfaced to views.
type ErrorInfo struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *ErrorInfo) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// UnknownError is the generic shape used for transport failures and
// unparseable error bodies.
func UnknownError() *ErrorInfo {
	return &ErrorInfo{Status: http.StatusInternalServerError, Message: UnknownErrorMessage}
}

// ErrorFromResponse builds an ErrorInfo from a failed response. The body is
// read (bounded) but not closed.
func ErrorFromResponse(resp *http.Response) *ErrorInfo {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return UnknownError()
	}
	return ParseErrorBody(resp.StatusCode, body)
}

// ParseErrorBody applies the error fallback rules to a raw error body:
// a JSON body yields {status, message ?? UnknownErrorMessage}, anything else
// yields UnknownError.
func ParseErrorBody(status int, body []byte) *ErrorInfo {
	var payload struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return UnknownError()
	}

	msg := UnknownErrorMessage
	if payload.Message != nil {
		msg = *payload.Message
	}
	return &ErrorInfo{Status: status, Message: msg}
}

// AsErrorInfo extracts an *ErrorInfo from err, falling back to UnknownError.
func AsErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var info *ErrorInfo
	if errors.As(err, &info) {
		return info
	}
	return UnknownError()
}
