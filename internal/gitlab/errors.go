package gitlab

import (
	"fmt"
	"net/http"
)

const (
	authenticationErrorTemplateConstant   = "gitlab authentication failed (HTTP %d): invalid or expired token"
	groupNotFoundErrorTemplateConstant    = "gitlab group not found: %s"
	requestStatusErrorTemplateConstant    = "gitlab request failed: HTTP %d: %s"
	requestTransportErrorTemplateConstant = "gitlab request failed: %v"
	parseErrorTemplateConstant            = "failed to parse gitlab response: %v"
)

// AuthenticationError reports a rejected token (HTTP 401 or 403).
type AuthenticationError struct {
	StatusCode int
}

func (authenticationError AuthenticationError) Error() string {
	return fmt.Sprintf(authenticationErrorTemplateConstant, authenticationError.StatusCode)
}

// GroupNotFoundError reports a group path unknown to the server (HTTP 404).
type GroupNotFoundError struct {
	GroupPath string
}

func (notFoundError GroupNotFoundError) Error() string {
	return fmt.Sprintf(groupNotFoundErrorTemplateConstant, notFoundError.GroupPath)
}

// RequestError reports a transport failure or an unexpected non-2xx status.
// StatusCode is zero for transport failures.
type RequestError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (requestError RequestError) Error() string {
	if requestError.Cause != nil {
		return fmt.Sprintf(requestTransportErrorTemplateConstant, requestError.Cause)
	}
	return fmt.Sprintf(requestStatusErrorTemplateConstant, requestError.StatusCode, requestError.Body)
}

// Unwrap exposes the transport failure, if any.
func (requestError RequestError) Unwrap() error {
	return requestError.Cause
}

// ParseError reports a response body that is not the expected JSON document.
type ParseError struct {
	Cause error
}

func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Cause)
}

// Unwrap exposes the decoding failure.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

func classifyStatus(statusCode int, body string, groupPath string) error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return AuthenticationError{StatusCode: statusCode}
	case statusCode == http.StatusNotFound && len(groupPath) > 0:
		return GroupNotFoundError{GroupPath: groupPath}
	case statusCode < 200 || statusCode > 299:
		return RequestError{StatusCode: statusCode, Body: body}
	default:
		return nil
	}
}
