package attributor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errMissingRequiredFields = errors.New("missing identifier or category")

// RateLimitError means the vendor rejected the call for quota reasons. It is
// retryable; RetryAfter carries the vendor's suggested wait when available.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("vendor rate limit: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// BackoffHint reports the vendor-suggested wait for retry scheduling.
func (e *RateLimitError) BackoffHint() time.Duration { return e.RetryAfter }

// VendorUnavailableError means the call failed for transient transport or
// server-side reasons. It is retryable.
type VendorUnavailableError struct {
	Err error
}

func (e *VendorUnavailableError) Error() string {
	return fmt.Sprintf("vendor unavailable: %v", e.Err)
}

func (e *VendorUnavailableError) Unwrap() error { return e.Err }

// InvalidResponseError means the vendor answered but the response did not
// match the expected structure. Retrying will not change the outcome.
type InvalidResponseError struct {
	Raw string
	Err error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid vendor response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// IsRetryable classifies an extraction or styling error as transient. Only
// rate limits and vendor outages qualify; everything else is fatal.
func IsRetryable(err error) bool {
	var rateLimit *RateLimitError
	var unavailable *VendorUnavailableError
	return errors.As(err, &rateLimit) || errors.As(err, &unavailable)
}

// Classify buckets a failed vendor call by sniffing the error message,
// mirroring how the vendors actually report quota and outage conditions. Auth
// and bad-request failures stay fatal.
func Classify(err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "resource exhausted"):
		return &RateLimitError{Err: err}
	case strings.Contains(msg, "401"),
		strings.Contains(msg, "403"),
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "invalid argument"):
		return err
	case strings.Contains(msg, "500"),
		strings.Contains(msg, "502"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "connection"):
		return &VendorUnavailableError{Err: err}
	default:
		return &VendorUnavailableError{Err: err}
	}
}
