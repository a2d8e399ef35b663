package state

import (
	"errors"
	"strings"
	"testing"

	nkerrors "github.com/vinayprograms/nodekit/errors"
)

// ============================================================================
// Operation.String() tests
// ============================================================================

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpPut, "put"},
		{OpDelete, "delete"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		got := tt.op.String()
		if got != tt.want {
			t.Errorf("Operation(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

// ============================================================================
// ValidateKey tests
// ============================================================================

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid simple key", "mykey", nil},
		{"valid dotted key", "counter.total", nil},
		{"valid with numbers", "key123", nil},
		{"valid long key", strings.Repeat("a", 1024), nil},
		{"empty key", "", ErrInvalidKey},
		{"key with space", "key with space", ErrInvalidKey},
		{"leading dot", ".key", ErrInvalidKey},
		{"trailing dot", "key.", ErrInvalidKey},
		{"too long key", strings.Repeat("a", 1025), ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if err != tt.wantErr {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

// ============================================================================
// MatchPattern tests
// ============================================================================

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		// Wildcard * matches all
		{"*", "anything", true},
		{"*", "counter.a", true},
		{"*", "", true},

		// Prefix wildcard
		{"counter.*", "counter.a", true},
		{"counter.*", "counter.a.b", true},
		{"counter.*", "counter.", true},
		{"counter.*", "other.a", false},
		{"counter.*", "countera", false},

		// Exact match
		{"counter.a", "counter.a", true},
		{"counter.a", "counter.b", false},
		{"counter.a", "counter.ab", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.key, func(t *testing.T) {
			got := MatchPattern(tt.pattern, tt.key)
			if got != tt.want {
				t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Error variable tests
// ============================================================================

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code nkerrors.ErrorCode
	}{
		{ErrNotFound, nkerrors.ErrCodeNotFound},
		{ErrClosed, nkerrors.ErrCodeStoreClosed},
		{ErrInvalidKey, nkerrors.ErrCodeInvalidInput},
		{ErrTypeMismatch, nkerrors.ErrCodeTypeMismatch},
	}

	for _, tt := range tests {
		if tt.err.Error() == "" {
			t.Errorf("error %v has empty string", tt.err)
		}
		if nkerrors.Code(tt.err) != tt.code {
			t.Errorf("Code(%v) = %s, want %s", tt.err, nkerrors.Code(tt.err), tt.code)
		}
		var rtErr *nkerrors.Error
		if errors.As(tt.err, &rtErr) && !rtErr.Timestamp().IsZero() {
			t.Errorf("%v should be a sentinel without a timestamp", tt.err)
		}
	}
}

func TestErrClosed_DistinctFromChannelClosed(t *testing.T) {
	channelClosed := nkerrors.Sentinel(nkerrors.ErrCodeChannelClosed)
	if errors.Is(ErrClosed, channelClosed) {
		t.Error("ErrClosed must not match a closed mailbox")
	}
	if errors.Is(channelClosed, ErrClosed) {
		t.Error("a closed mailbox must not match ErrClosed")
	}
}

// ============================================================================
// Typed access
// ============================================================================

type point struct{ X, Y int }

func TestGet_Typed(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("origin", point{1, 2})

	p, err := Get[point](s, "origin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p != (point{1, 2}) {
		t.Errorf("got %+v", p)
	}
}

func TestGet_TypeMismatch(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("name", "nodekit")

	n, err := Get[int](s, "name")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected zero value, got %d", n)
	}
	if got := nkerrors.GetMetadata(err)["key"]; got != "name" {
		t.Errorf("metadata key = %q", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, err := Get[int](s, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("counter", 41)

	n, err := Update(s, "counter", func(n *int) error {
		*n++
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if n != 42 {
		t.Errorf("Update returned %d, want 42", n)
	}

	got, _ := Get[int](s, "counter")
	if got != 42 {
		t.Errorf("stored %d, want 42", got)
	}
}

func TestUpdate_CallbackErrorLeavesValue(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("counter", 1)
	boom := errors.New("boom")

	_, err := Update(s, "counter", func(n *int) error {
		*n = 100
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	got, _ := Get[int](s, "counter")
	if got != 1 {
		t.Errorf("value changed to %d", got)
	}
}

func TestUpdate_TypeMismatch(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Insert("counter", "one")

	called := false
	_, err := Update(s, "counter", func(n *int) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if called {
		t.Error("callback should not run on mismatch")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, err := Update(s, "missing", func(n *int) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
