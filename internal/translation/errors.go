package translation

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is a transient provider failure: network trouble, rate
// limiting, an open circuit breaker or a malformed response.
type ServiceError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the provider rejected the call with 429.
func (e *ServiceError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServiceError reports whether err is or wraps a *ServiceError.
func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}

func serviceError(provider string, status int, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Provider: provider, StatusCode: status, Err: fmt.Errorf(format, args...)}
}
