package domain

import (
	"fmt"
)

// UpstreamErrorKind classifies why a call to a third-party provider failed
type UpstreamErrorKind string

const (
	// NetworkError covers transport failures and timeouts
	NetworkError UpstreamErrorKind = "network"
	// UpstreamStatusError means the provider answered with a non-2xx status
	UpstreamStatusError UpstreamErrorKind = "status"
	// MalformedPayloadError means the body could not be decoded or lacked required data
	MalformedPayloadError UpstreamErrorKind = "malformed"
)

// UpstreamError is returned for every failed outbound call.
// All kinds surface to clients as 500; Kind exists for logs and tests.
type UpstreamError struct {
	Kind     UpstreamErrorKind
	Provider string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case UpstreamStatusError:
		return fmt.Sprintf("%s: upstream returned status %d", e.Provider, e.Status)
	default:
		if e.Err == nil {
			return fmt.Sprintf("%s: %s error", e.Provider, e.Kind)
		}
		return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
