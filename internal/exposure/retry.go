package exposure

import (
	"context"
	"errors"
	"time"

	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
)

// Error codes the provider uses for throttling and transient faults.
// These are the only failures worth retrying; everything else is terminal
// for the one resource.
var transientCodes = map[string]struct{}{
	"Throttling":                  {},
	"ThrottlingException":         {},
	"TooManyRequestsException":    {},
	"RequestLimitExceeded":        {},
	"RequestTimeout":              {},
	"ServiceUnavailable":          {},
	"ServiceUnavailableException": {},
	"SlowDown":                    {},
	"InternalError":               {},
	"InternalFailure":             {},
}

// Transient reports whether err is a provider fault eligible for retry.
func Transient(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	_, ok := transientCodes[ae.ErrorCode()]
	return ok
}

// ErrorCode returns the provider's error code for err, or "" when err is
// not a provider error. Kind packages use it to classify not-found and
// policy-absent conditions that have no typed error in the SDK.
func ErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

const maxRetries = 4

// WithBackoff runs op, retrying transient provider errors with bounded
// exponential backoff. Terminal errors and context cancellation return
// immediately.
func WithBackoff(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	return backoff.Retry(func() error {
		if err := op(); err != nil {
			if Transient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
}
