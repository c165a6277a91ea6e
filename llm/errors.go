// ABOUTME: Error hierarchy for the policy-service client with per-type retryability.
// ABOUTME: Rate limiting and server faults are retryable; auth, request, and config faults are not.

package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SDKError is the base error type for all errors produced by this package.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns false for the base SDKError. Subtypes override this.
func (e *SDKError) IsRetryable() bool {
	return false
}

// ProviderError represents an error returned by a policy provider's API.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
	ErrorCode  string
	Retryable  bool
	RetryAfter *float64
	Raw        json.RawMessage
}

func (e *ProviderError) Error() string { return e.SDKError.Error() }
func (e *ProviderError) Unwrap() error { return e.SDKError.Unwrap() }

// IsRetryable returns the Retryable flag set on the provider error.
func (e *ProviderError) IsRetryable() bool { return e.Retryable }

// RateLimitError represents a 429 response. Retryable, optionally carrying
// a retry-after hint in seconds.
type RateLimitError struct {
	ProviderError
}

func (e *RateLimitError) Error() string     { return e.ProviderError.Error() }
func (e *RateLimitError) IsRetryable() bool { return true }

// ServerError represents a 5xx response, including Anthropic's 529
// overloaded_error. Retryable.
type ServerError struct {
	ProviderError
}

func (e *ServerError) Error() string     { return e.ProviderError.Error() }
func (e *ServerError) IsRetryable() bool { return true }

// AuthenticationError represents a 401 or 403 response. Not retryable.
type AuthenticationError struct {
	ProviderError
}

func (e *AuthenticationError) Error() string     { return e.ProviderError.Error() }
func (e *AuthenticationError) IsRetryable() bool { return false }

// InvalidRequestError represents a 400, 404, or 422 response. Not retryable.
type InvalidRequestError struct {
	ProviderError
}

func (e *InvalidRequestError) Error() string     { return e.ProviderError.Error() }
func (e *InvalidRequestError) IsRetryable() bool { return false }

// NetworkError represents a transport-level failure before any HTTP status
// was received (connection reset, DNS failure, timeout). Not retryable at
// this layer: the decision engine treats it as a permanent fault per call.
type NetworkError struct {
	SDKError
}

func (e *NetworkError) Error() string     { return e.SDKError.Error() }
func (e *NetworkError) IsRetryable() bool { return false }

// ConfigurationError represents missing or invalid client configuration,
// such as an absent API key. Fatal at startup, never retried.
type ConfigurationError struct {
	SDKError
}

func (e *ConfigurationError) Error() string     { return e.SDKError.Error() }
func (e *ConfigurationError) IsRetryable() bool { return false }

// ErrorFromStatusCode maps an HTTP status code to the appropriate error type.
func ErrorFromStatusCode(statusCode int, message, provider, errorCode string, raw json.RawMessage, retryAfter *float64) error {
	pe := ProviderError{
		SDKError:   SDKError{Message: fmt.Sprintf("%s: %s", provider, message)},
		Provider:   provider,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Raw:        raw,
		RetryAfter: retryAfter,
	}

	switch {
	case statusCode == 429:
		pe.Retryable = true
		return &RateLimitError{ProviderError: pe}
	case statusCode >= 500:
		pe.Retryable = true
		return &ServerError{ProviderError: pe}
	case statusCode == 401 || statusCode == 403:
		return &AuthenticationError{ProviderError: pe}
	default:
		return &InvalidRequestError{ProviderError: pe}
	}
}

// IsRetryable reports whether err (or anything it wraps) is a transient
// fault worth retrying with backoff.
func IsRetryable(err error) bool {
	type retryable interface {
		IsRetryable() bool
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if r, ok := e.(retryable); ok {
			return r.IsRetryable()
		}
	}
	return false
}

// RetryAfterHint extracts a provider-supplied retry-after hint in seconds,
// if err carries one.
func RetryAfterHint(err error) (float64, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) && rle.RetryAfter != nil {
		return *rle.RetryAfter, true
	}
	var se *ServerError
	if errors.As(err, &se) && se.RetryAfter != nil {
		return *se.RetryAfter, true
	}
	return 0, false
}
