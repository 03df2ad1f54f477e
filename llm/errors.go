package llm

import (
	"errors"
)

// Kind says whether a failed completion is worth retrying.
type Kind int

const (
	// KindUnknown marks errors the client did not produce.
	KindUnknown Kind = iota
	// KindTransient covers network failures, rate limiting and 5xx responses.
	KindTransient
	// KindFatal covers unknown providers, rejected requests and responses
	// that cannot be parsed.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a classified completion failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// NewTransientError marks err as retryable.
func NewTransientError(err error) error {
	return &Error{Kind: KindTransient, Err: err}
}

// NewFatalError marks err as permanent.
func NewFatalError(err error) error {
	return &Error{Kind: KindFatal, Err: err}
}

// KindOf returns the classification carried anywhere in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool { return KindOf(err) == KindTransient }

// IsFatal reports whether err will fail again on retry.
func IsFatal(err error) bool { return KindOf(err) == KindFatal }

// Describe renders a completion failure for the person who asked the
// question, with a hint that depends on its classification.
func Describe(err error) string {
	msg := "LLM error: " + err.Error()
	switch KindOf(err) {
	case KindTransient:
		return msg + " (temporary failure, try again)"
	case KindFatal:
		return msg + " (request rejected, check the llm settings)"
	default:
		return msg
	}
}
