package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies continuation failures into a uniform taxonomy.
type ErrorKind int

const (
	KindGenerationFailed ErrorKind = iota
	KindEmptyInput
	KindMissingCredential
	KindQuotaExceeded
	KindRateLimited
	KindEmptyResponse
	KindUnsupportedProvider
)

// Sentinel errors, one per kind, for use with errors.Is.
var (
	ErrGenerationFailed    = errors.New("generation failed")
	ErrEmptyInput          = errors.New("empty input")
	ErrMissingCredential   = errors.New("missing credential")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrRateLimited         = errors.New("rate limited")
	ErrEmptyResponse       = errors.New("empty response")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Label returns the category label used in the HTTP error envelope.
func (k ErrorKind) Label() string {
	switch k {
	case KindEmptyInput:
		return "empty_input"
	case KindMissingCredential:
		return "missing_credential"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindRateLimited:
		return "rate_limited"
	case KindEmptyResponse:
		return "empty_response"
	case KindUnsupportedProvider:
		return "unsupported_provider"
	default:
		return "generation_failed"
	}
}

func (k ErrorKind) String() string {
	return k.Label()
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindEmptyInput:
		return ErrEmptyInput
	case KindMissingCredential:
		return ErrMissingCredential
	case KindQuotaExceeded:
		return ErrQuotaExceeded
	case KindRateLimited:
		return ErrRateLimited
	case KindEmptyResponse:
		return ErrEmptyResponse
	case KindUnsupportedProvider:
		return ErrUnsupportedProvider
	default:
		return ErrGenerationFailed
	}
}

// ProviderError is the single error type crossing the adapter and service
// boundaries. Message is human readable; Err keeps the underlying cause.
type ProviderError struct {
	Provider ProviderID
	Kind     ErrorKind
	Message  string
	Err      error
}

// NewProviderError creates a ProviderError.
func NewProviderError(provider ProviderID, kind ErrorKind, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  message,
		Err:      err,
	}
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind.Label(), e.Err)
	}
	return e.Kind.Label()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind.
func (e *ProviderError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf extracts the ErrorKind from err, defaulting to KindGenerationFailed.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindGenerationFailed
}

// IsProviderError checks if an error is a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
