package api

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when publishing is attempted without a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// ConfigurationError is a static mistake in the configuration: a missing
// credential, an unnamed resource or a resource that matches nothing.
type ConfigurationError struct {
	Resource string // Optional: offending resource name
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("configuration error: resource %q: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AuthenticationError carries the transport's login failure unchanged.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// PublishError reports a rejected or partially rejected upsert batch.
type PublishError struct {
	Reason   string
	Detail   any          // whole remote result, when there is a single one
	Failures []FailedItem // per-item failures from a list response
	Err      error        // transport error, if any
}

// FailedItem describes one record the remote side refused.
type FailedItem struct {
	FullName string
	Messages []string
}

func (e *PublishError) Error() string {
	msg := "upload resources failed"
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if len(e.Failures) > 0 {
		msg += fmt.Sprintf(": %d failed", len(e.Failures))
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *PublishError) Unwrap() error { return e.Err }

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

func IsPublishError(err error) bool {
	var pe *PublishError
	return errors.As(err, &pe)
}
