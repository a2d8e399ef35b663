package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode_DefaultCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorCategory
	}{
		{ErrCodeChannelClosed, CategoryPermanent},
		{ErrCodeSendFailed, CategoryPermanent},
		{ErrCodeReceiveFailed, CategoryPermanent},
		{ErrCodeShutdown, CategoryFatal},
		{ErrCodeUnknown, CategoryFatal},
		{ErrCodeCanceled, CategoryPermanent},
		{ErrCodeTypeMismatch, CategoryPermanent},
		{ErrCodeStoreClosed, CategoryPermanent},
		{ErrCodePanic, CategoryInternal},
		{ErrorCode("SOMETHING_ELSE"), CategoryInternal},
	}

	for _, tt := range tests {
		if got := tt.code.DefaultCategory(); got != tt.want {
			t.Errorf("%s.DefaultCategory() = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestFatalErrorsAreNotRetryable(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeShutdown, ErrCodeUnknown} {
		err := FromCode(code)
		if err.Retryable() {
			t.Errorf("%s should not be retryable", code)
		}
		if !IsFatal(err) {
			t.Errorf("%s should be fatal", code)
		}
	}
}

func TestError_Message(t *testing.T) {
	err := New(ErrCodeSendFailed, "send failed")
	if err.Error() != "send failed" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := New(ErrCodeSendFailed, "send failed", WithCause(fmt.Errorf("boom")))
	if wrapped.Error() != "send failed: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestSentinelMatchesThroughStdlib(t *testing.T) {
	sentinel := Sentinel(ErrCodeShutdown)
	err := fmt.Errorf("start: %w", Shutdown("running"))

	if !errors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to match by code")
	}
	if errors.Is(err, Sentinel(ErrCodeUnknown)) {
		t.Fatal("different codes should not match")
	}
}

func TestUnknown_Metadata(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Unknown("writer", "running", cause)

	md := err.Metadata()
	if md["node"] != "writer" {
		t.Errorf("node = %q, want writer", md["node"])
	}
	if md["phase"] != "running" {
		t.Errorf("phase = %q, want running", md["phase"])
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be in the chain")
	}
	if Cause(err) != cause {
		t.Errorf("Cause() = %v", Cause(err))
	}
}

func TestMetadata_ReturnsCopy(t *testing.T) {
	err := New(ErrCodeInternal, "x", WithMetadata("k", "v"))
	md := err.Metadata()
	md["k"] = "changed"

	if err.Metadata()["k"] != "v" {
		t.Error("Metadata should return a copy")
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if Wrap(nil, "msg") != nil {
			t.Error("Wrap(nil) should be nil")
		}
	})

	t.Run("runtime error keeps code", func(t *testing.T) {
		inner := FromCode(ErrCodeReceiveFailed)
		err := Wrap(inner, "recv ping")
		if err.Code() != ErrCodeReceiveFailed {
			t.Errorf("code = %s", err.Code())
		}
		if !errors.Is(err, inner) {
			t.Error("inner should be in chain")
		}
	})

	t.Run("context canceled", func(t *testing.T) {
		err := Wrap(context.Canceled, "start")
		if err.Code() != ErrCodeCanceled {
			t.Errorf("code = %s, want CANCELED", err.Code())
		}
	})

	t.Run("plain error", func(t *testing.T) {
		err := Wrap(fmt.Errorf("plain"), "op")
		if err.Code() != ErrCodeInternal {
			t.Errorf("code = %s, want INTERNAL", err.Code())
		}
	})
}

func TestIs_WalksChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", WrapWithCode(errors.New("x"), ErrCodeSendFailed, "send"))
	if !Is(err, ErrCodeSendFailed) {
		t.Error("expected SEND_FAILED in chain")
	}
	if Is(err, ErrCodeShutdown) {
		t.Error("unexpected SHUTDOWN in chain")
	}
	if Code(err) != ErrCodeSendFailed {
		t.Errorf("Code() = %s", Code(err))
	}
	if Code(errors.New("plain")) != "" {
		t.Error("plain errors have no code")
	}
}

func TestRecoverPanic(t *testing.T) {
	if RecoverPanic(nil) != nil {
		t.Fatal("nil panic should give nil")
	}

	tests := []struct {
		value interface{}
		want  string
	}{
		{"boom", "boom"},
		{errors.New("bad"), "bad"},
		{42, "42"},
	}
	for _, tt := range tests {
		err := RecoverPanic(tt.value)
		if err.Code() != ErrCodePanic {
			t.Errorf("code = %s", err.Code())
		}
		if err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
		}
	}
}
