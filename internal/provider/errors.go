package provider

import (
	"errors"
	"fmt"
)

// InvalidProviderError reports a backend identifier outside the recognized
// vocabulary.
type InvalidProviderError struct {
	Provider string
}

func (e *InvalidProviderError) Error() string {
	return fmt.Sprintf("invalid provider %q", e.Provider)
}

// NotImplementedError reports an identifier that is recognized but has no
// working adapter yet.
type NotImplementedError struct {
	Provider string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("provider %q is not implemented", e.Provider)
}

// InvalidConfigError reports a configuration rejected before any backend
// call was attempted.
type InvalidConfigError struct {
	Provider string
	Reason   string
	Cause    error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for provider %q: %s", e.Provider, e.Reason)
}

func (e *InvalidConfigError) Unwrap() error { return e.Cause }

// InvalidResponseError reports a backend response this layer cannot
// interpret (malformed body, missing or non-text content).
type InvalidResponseError struct {
	Provider string
	Reason   string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s returned an invalid response: %s", e.Provider, e.Reason)
}

// APIError is a request-level failure signaled by the backend (auth, rate
// limit, quota). Raw retains the original response body for inspection.
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Code       string
	Message    string
	Raw        []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, msg)
}

// AsAPIError unwraps err to an *APIError when one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
