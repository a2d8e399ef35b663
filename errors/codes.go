package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where retry may succeed.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	// Examples: invalid input, closed channel, wrong value type.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryFatal indicates the lifecycle itself was terminated.
	// Fatal errors end Start and skip every remaining phase.
	CategoryFatal ErrorCategory = "fatal"

	// CategoryInternal indicates unexpected errors, bugs, or system failures.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryTransient
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes used by the runtime.
const (
	// Mailbox transport
	ErrCodeChannelClosed ErrorCode = "CHANNEL_CLOSED" // No receiver can ever observe the channel again
	ErrCodeSendFailed    ErrorCode = "SEND_FAILED"    // Message could not be enqueued
	ErrCodeReceiveFailed ErrorCode = "RECEIVE_FAILED" // Channel closed with nothing pending

	// Lifecycle
	ErrCodeShutdown       ErrorCode = "SHUTDOWN"        // Emergency shutdown requested
	ErrCodeUnknown        ErrorCode = "UNKNOWN"         // Node task failed with no more specific cause
	ErrCodeAlreadyStarted ErrorCode = "ALREADY_STARTED" // Start called more than once
	ErrCodeCanceled       ErrorCode = "CANCELED"        // Caller context canceled

	// State store
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // Key does not exist
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH" // Stored value has another type
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed or invalid input
	ErrCodeStoreClosed  ErrorCode = "STORE_CLOSED"  // Store was closed

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL" // Unexpected internal error
	ErrCodePanic    ErrorCode = "PANIC"    // Recovered from panic
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeChannelClosed, ErrCodeSendFailed, ErrCodeReceiveFailed,
		ErrCodeAlreadyStarted, ErrCodeCanceled, ErrCodeNotFound,
		ErrCodeTypeMismatch, ErrCodeInvalidInput, ErrCodeStoreClosed:
		return CategoryPermanent

	case ErrCodeShutdown, ErrCodeUnknown:
		return CategoryFatal

	case ErrCodeInternal, ErrCodePanic:
		return CategoryInternal

	default:
		return CategoryInternal
	}
}

// DefaultRetryable returns whether this error code is typically retryable.
func (c ErrorCode) DefaultRetryable() bool {
	return c.DefaultCategory().IsRetryable()
}

var codeDescriptions = map[ErrorCode]string{
	ErrCodeChannelClosed:  "channel closed",
	ErrCodeSendFailed:     "send failed",
	ErrCodeReceiveFailed:  "receive failed",
	ErrCodeShutdown:       "emergency shutdown requested",
	ErrCodeUnknown:        "an unknown error occurred",
	ErrCodeAlreadyStarted: "system already started",
	ErrCodeCanceled:       "operation canceled",
	ErrCodeNotFound:       "key not found",
	ErrCodeTypeMismatch:   "value has a different type",
	ErrCodeInvalidInput:   "invalid input provided",
	ErrCodeStoreClosed:    "store closed",
	ErrCodeInternal:       "internal error",
	ErrCodePanic:          "recovered from panic",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
