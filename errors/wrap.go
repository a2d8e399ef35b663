package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already an *Error, the wrapper keeps its code and category.
// Context errors become CANCELED; anything else becomes INTERNAL.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var rtErr *Error
	if errors.As(err, &rtErr) {
		wrapped := &Error{
			code:      rtErr.code,
			category:  rtErr.category,
			message:   message,
			cause:     err,
			metadata:  rtErr.Metadata(),
			retryable: rtErr.retryable,
			timestamp: rtErr.timestamp,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// AsRuntimeError attempts to extract a RuntimeError from an error chain.
// Returns nil if none is found.
func AsRuntimeError(err error) RuntimeError {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr
	}
	return nil
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if rtErr, ok := err.(*Error); ok && rtErr.code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsCategory checks if the outermost runtime error in the chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.category == category
	}
	return false
}

// IsRetryable checks if the error is retryable.
func IsRetryable(err error) bool {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Retryable()
	}
	return false
}

// IsFatal checks if the error ended the lifecycle.
func IsFatal(err error) bool {
	return IsCategory(err, CategoryFatal)
}

// Code extracts the error code from an error, if available.
// Returns empty string if err is not a runtime error.
func Code(err error) ErrorCode {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.code
	}
	return ""
}

// GetMetadata extracts metadata from an error.
// Returns nil if err is not a runtime error.
func GetMetadata(err error) map[string]string {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Metadata()
	}
	return nil
}

// Cause returns the root cause of the error chain.
func Cause(err error) error {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err
		}
		err = inner
	}
}

// RecoverPanic converts a recovered panic value into an Error.
func RecoverPanic(recovered interface{}) *Error {
	if recovered == nil {
		return nil
	}
	var message string
	switch v := recovered.(type) {
	case error:
		message = v.Error()
	case string:
		message = v
	default:
		message = fmt.Sprintf("%v", v)
	}
	return New(ErrCodePanic, message, WithMetadata("panic_value", fmt.Sprintf("%T", recovered)))
}
