package accesssdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the service.
const (
	CodeUnauthenticated     = "unauthenticated"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeInvalidToken        = "invalid_token"
	CodeInvalidRequest      = "invalid_request"
	CodeInsufficientCredits = "insufficient_credits"
	CodeServerError         = "server_error"
	CodeRateLimited         = "rate_limit_exceeded"

	// Landlord endpoints answer with these kinds instead.
	KindLinkInvalid  = "link_invalid"
	KindAccessDenied = "access_denied"
	KindNotFound     = "not_found"
	KindUnavailable  = "unavailable"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("accesssdk: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("accesssdk: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Is matches another *APIError by code, so errors.Is(err,
// ErrInsufficientCredits) works on any response carrying that code.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrUnauthenticated     = &APIError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthenticated}
	ErrForbidden           = &APIError{StatusCode: http.StatusForbidden, Code: CodeForbidden}
	ErrNotFound            = &APIError{StatusCode: http.StatusNotFound, Code: CodeNotFound}
	ErrInsufficientCredits = &APIError{StatusCode: http.StatusPaymentRequired, Code: CodeInsufficientCredits}
	ErrLinkInvalid         = &APIError{StatusCode: http.StatusUnauthorized, Code: KindLinkInvalid}
	ErrAccessDenied        = &APIError{StatusCode: http.StatusForbidden, Code: KindAccessDenied}
)

func statusIs(err error, code int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == code
}

func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }
func IsForbidden(err error) bool    { return statusIs(err, http.StatusForbidden) }
func IsNotFound(err error) bool     { return statusIs(err, http.StatusNotFound) }

// parseErrorResponse turns an error body into an *APIError. Internal
// endpoints send {error, error_description}; landlord endpoints send
// {error, message}.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var wire struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		desc := wire.ErrorDescription
		if desc == "" {
			desc = wire.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Code: wire.Error, Description: desc}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        CodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
