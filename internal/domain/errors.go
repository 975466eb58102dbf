package domain

import (
	"context"
	"errors"
)

// Domain errors.
var (
	// ErrUnsupportedPlatform is returned when no platform pattern matches a URL.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrPrivateContent is returned when content requires authenticated access.
	ErrPrivateContent = errors.New("content is private")

	// ErrContentRemoved is returned when the content no longer exists upstream.
	ErrContentRemoved = errors.New("content removed or not found")

	// ErrNoMedia is returned when a page yields no extractable media.
	ErrNoMedia = errors.New("no media found")

	// ErrOversized is returned when no item fits the delivery ceiling.
	ErrOversized = errors.New("media exceeds delivery size limit")

	// ErrRateLimited is returned when rate limited by an upstream platform.
	ErrRateLimited = errors.New("rate limited")

	// ErrExtraction is returned when a platform response cannot be parsed.
	ErrExtraction = errors.New("extraction failed")

	// ErrQuotaExceeded is returned when the caption service quota is exhausted.
	ErrQuotaExceeded = errors.New("caption quota exceeded")

	// ErrInvalidAPIKey is returned when the caption service rejects the API key.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrUpstream is returned for any other caption service failure.
	ErrUpstream = errors.New("upstream service error")

	// ErrEmptyTopic is returned when a caption topic is empty after trimming.
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrTopicTooLong is returned when a caption topic exceeds the bound.
	ErrTopicTooLong = errors.New("topic too long")

	// ErrNoRequests is returned when the queue has nothing to dequeue.
	ErrNoRequests = errors.New("no requests available")

	// ErrSendFailed is returned when the outbound transport rejects an asset.
	ErrSendFailed = errors.New("transport send failed")
)

// Retryable reports whether an error belongs to the transient class that
// may be retried once. Policy errors and removed/private/malformed content
// never retry; everything else (network, rate limit, 5xx) does.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, ErrPrivateContent),
		errors.Is(err, ErrContentRemoved),
		errors.Is(err, ErrNoMedia),
		errors.Is(err, ErrOversized),
		errors.Is(err, ErrExtraction),
		errors.Is(err, ErrUnsupportedPlatform):
		return false
	}
	return true
}

// FailReasonFor maps an operational error to its outcome reason code.
func FailReasonFor(err error) FailReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return FailTimeout
	case errors.Is(err, ErrExtraction):
		return FailExtraction
	default:
		return FailNetwork
	}
}

// RequestError wraps an error with link request context.
type RequestError struct {
	RequestID RequestID
	Op        string
	Err       error
}

func (e *RequestError) Error() string {
	if e.RequestID != "" {
		return e.Op + " [" + e.RequestID.String() + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError.
func NewRequestError(id RequestID, op string, err error) *RequestError {
	return &RequestError{
		RequestID: id,
		Op:        op,
		Err:       err,
	}
}
