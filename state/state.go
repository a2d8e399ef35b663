package state

import (
	"strings"
	"time"

	nkerrors "github.com/vinayprograms/nodekit/errors"
)

// Common errors. Match with errors.Is.
var (
	ErrNotFound     = nkerrors.Sentinel(nkerrors.ErrCodeNotFound)
	ErrClosed       = nkerrors.Sentinel(nkerrors.ErrCodeStoreClosed)
	ErrInvalidKey   = nkerrors.Sentinel(nkerrors.ErrCodeInvalidInput)
	ErrTypeMismatch = nkerrors.Sentinel(nkerrors.ErrCodeTypeMismatch)
)

// Operation represents the type of change to a key.
type Operation int

const (
	// OpPut indicates a key was created or updated.
	OpPut Operation = iota
	// OpDelete indicates a key was deleted.
	OpDelete
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// KeyValue is one change notification.
type KeyValue struct {
	Key       string
	Value     any
	Revision  uint64
	Operation Operation
	Modified  time.Time
}

// Store is a concurrent map from string keys to values of any type.
type Store interface {
	// Insert stores value under key, replacing any previous value.
	// It returns the previous value, or nil.
	Insert(key string, value any) (any, error)

	// Load returns the raw value for key.
	// Returns ErrNotFound if the key does not exist.
	Load(key string) (any, error)

	// Modify replaces the value for key with the result of fn, holding the
	// key exclusively while fn runs. fn must not call back into the store.
	// Returns ErrNotFound if the key does not exist.
	Modify(key string, fn func(current any) (any, error)) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys returns all keys matching a pattern.
	// Pattern supports * wildcard at the end (e.g., "counter.*").
	Keys(pattern string) ([]string, error)

	// Watch streams changes to keys matching a pattern.
	// The channel is closed when the store closes.
	Watch(pattern string) (<-chan *KeyValue, error)

	// Close shuts down the store and closes every watch channel.
	Close() error
}

// Get returns the value for key as a V.
// A value of another type yields a TYPE_MISMATCH error.
func Get[V any](s Store, key string) (V, error) {
	var zero V
	raw, err := s.Load(key)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(V)
	if !ok {
		return zero, nkerrors.TypeMismatch(key, zero, raw)
	}
	return v, nil
}

// Update gives fn exclusive mutable access to the V stored under key and
// writes back the result. If fn returns an error nothing is written.
func Update[V any](s Store, key string, fn func(v *V) error) (V, error) {
	var out V
	err := s.Modify(key, func(current any) (any, error) {
		v, ok := current.(V)
		if !ok {
			var zero V
			return nil, nkerrors.TypeMismatch(key, zero, current)
		}
		if err := fn(&v); err != nil {
			return nil, err
		}
		out = v
		return v, nil
	})
	return out, err
}

// ValidateKey checks if a key is valid.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, " ") {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return ErrInvalidKey
	}
	if len(key) > 1024 {
		return ErrInvalidKey
	}
	return nil
}

// MatchPattern checks if a key matches a pattern.
// Supports * wildcard at the end (e.g., "counter.*" matches "counter.a").
func MatchPattern(pattern, key string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(key, prefix)
	}
	return pattern == key
}
