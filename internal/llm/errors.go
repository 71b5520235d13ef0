package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// Kind is the closed taxonomy of failures surfaced to the user. Every
// transport-level failure is normalized into one of these at the
// collaborator boundary, not at call sites.
type Kind int

const (
	KindUnknown Kind = iota
	KindMissingCredentials
	KindUnsupportedRawFormat
	KindUnsupportedFormat
	KindVideoDecodeFailed
	KindVideoDecodeTimeout
	KindQuotaExceeded
	KindRateLimited
	KindContentSafety
)

// userMessages maps each kind to its fixed user-facing message
var userMessages = map[Kind]string{
	KindUnknown:              "Something went wrong while generating metadata. Please try again.",
	KindMissingCredentials:   "No API key configured. Run 'stocktag configure' first.",
	KindUnsupportedRawFormat: "RAW camera files are not supported. Convert to JPEG or PNG first.",
	KindUnsupportedFormat:    "This file format is not supported.",
	KindVideoDecodeFailed:    "Could not decode a frame from this video.",
	KindVideoDecodeTimeout:   "Timed out decoding a frame from this video.",
	KindQuotaExceeded:        "Daily token quota exceeded. Try again tomorrow or raise the quota.",
	KindRateLimited:          "The AI service is rate limiting requests. Please wait a moment.",
	KindContentSafety:        "The AI service declined this content for safety reasons.",
}

// ServiceError wraps any collaborator failure with its normalized kind
type ServiceError struct {
	Kind      Kind
	Temporary bool // retryable with backoff
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.UserMessage() + ": " + e.Err.Error()
	}
	return e.UserMessage()
}

func (e *ServiceError) Unwrap() error { return e.Err }

// UserMessage returns the fixed localizable message for this kind
func (e *ServiceError) UserMessage() string {
	return userMessages[e.Kind]
}

// NewError builds a ServiceError of a locally-determined kind
func NewError(kind Kind, err error) *ServiceError {
	return &ServiceError{Kind: kind, Err: err}
}

// Normalize maps an arbitrary transport failure into the closed
// taxonomy. Already-normalized errors pass through unchanged.
func Normalize(err error) *ServiceError {
	var serr *ServiceError
	if errors.As(err, &serr) {
		return serr
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 401, 403:
			return &ServiceError{Kind: KindMissingCredentials, Err: err}
		case 429:
			return &ServiceError{Kind: KindRateLimited, Temporary: true, Err: err}
		case 500, 502, 503, 529:
			// Server-side hiccups behave like rate limits for retry purposes.
			return &ServiceError{Kind: KindRateLimited, Temporary: true, Err: err}
		case 400:
			msg := strings.ToLower(apierr.Error())
			if strings.Contains(msg, "safety") || strings.Contains(msg, "blocked") {
				return &ServiceError{Kind: KindContentSafety, Err: err}
			}
			return &ServiceError{Kind: KindUnknown, Err: err}
		default:
			return &ServiceError{Kind: KindUnknown, Err: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Kind: KindUnknown, Temporary: true, Err: err}
	}

	return &ServiceError{Kind: KindUnknown, Err: err}
}

// Retryable reports whether the failure is worth a backed-off retry.
// Quota exhaustion is never retried.
func (e *ServiceError) Retryable() bool {
	if e.Kind == KindQuotaExceeded {
		return false
	}
	return e.Temporary
}
