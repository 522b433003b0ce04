package enhance

import "errors"

// ErrorKind classifies what went wrong while talking to an LLM vendor,
// so callers can map failures to distinct HTTP responses.
type ErrorKind string

const (
	KindNoProviderConfigured ErrorKind = "no_provider_configured"
	KindMissingCredentials   ErrorKind = "missing_credentials"
	KindInvalidCredentials   ErrorKind = "invalid_credentials"
	KindRateLimited          ErrorKind = "rate_limited"
	KindQuotaExceeded        ErrorKind = "quota_exceeded"
	KindBadRequest           ErrorKind = "bad_request"
	KindTransientNetwork     ErrorKind = "transient_network"
	KindMalformedResponse    ErrorKind = "malformed_response"
)

// Error carries the classified failure. Status is the upstream HTTP
// status when one was received, RetryAfter is in seconds and only set
// for rate limiting.
type Error struct {
	Kind       ErrorKind
	Message    string
	Status     int
	RetryAfter int
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// AsError unwraps an enhancement error from any error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ErrFeatureDisabled is returned when the requested feature is switched
// off in the runtime config.
var ErrFeatureDisabled = errors.New("feature is disabled")
