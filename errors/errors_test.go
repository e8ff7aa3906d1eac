package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("ErrorClass(%d).String() = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestWrapFormat(t *testing.T) {
	base := stderrors.New("boom")
	err := Wrap(base, "Client", "Connect", "open stream")

	want := "Client.Connect: open stream failed: boom"
	if err.Error() != want {
		t.Errorf("Wrap() = %q, want %q", err.Error(), want)
	}
	if !stderrors.Is(err, base) {
		t.Error("wrapped error should match the base error")
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, "C", "M", "a") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if WrapTransient(nil, "C", "M", "a") != nil {
		t.Error("WrapTransient(nil) should return nil")
	}
	if WrapInvalid(nil, "C", "M", "a") != nil {
		t.Error("WrapInvalid(nil) should return nil")
	}
	if WrapFatal(nil, "C", "M", "a") != nil {
		t.Error("WrapFatal(nil) should return nil")
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{
			name: "wrapped transient",
			err:  WrapTransient(stderrors.New("boom"), "Client", "Connect", "open stream"),
			want: ErrorTransient,
		},
		{
			name: "wrapped invalid",
			err:  WrapInvalid(stderrors.New("boom"), "Client", "Connect", "open stream"),
			want: ErrorInvalid,
		},
		{
			name: "wrapped fatal",
			err:  WrapFatal(stderrors.New("boom"), "Client", "Connect", "open stream"),
			want: ErrorFatal,
		},
		{
			name: "client error sentinel",
			err:  fmt.Errorf("sending action: %w", ErrClientError),
			want: ErrorInvalid,
		},
		{
			name: "connection lost sentinel",
			err:  fmt.Errorf("reading: %w", ErrConnectionLost),
			want: ErrorTransient,
		},
		{
			name: "missing surface id sentinel",
			err:  ErrMissingSurfaceID,
			want: ErrorInvalid,
		},
		{
			name: "unknown error defaults to transient",
			err:  stderrors.New("something odd happened"),
			want: ErrorTransient,
		},
		{
			name: "network pattern",
			err:  stderrors.New("dial tcp: network is unreachable"),
			want: ErrorTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	transient := WrapTransient(stderrors.New("x"), "C", "M", "a")
	invalid := WrapInvalid(stderrors.New("x"), "C", "M", "a")
	fatal := WrapFatal(stderrors.New("x"), "C", "M", "a")

	if !IsTransient(transient) || IsInvalid(transient) || IsFatal(transient) {
		t.Error("transient error misclassified")
	}
	if !IsInvalid(invalid) || IsTransient(invalid) || IsFatal(invalid) {
		t.Error("invalid error misclassified")
	}
	if !IsFatal(fatal) || IsTransient(fatal) || IsInvalid(fatal) {
		t.Error("fatal error misclassified")
	}

	if IsTransient(nil) || IsInvalid(nil) || IsFatal(nil) {
		t.Error("nil error should not match any class")
	}
}

func TestClassifiedErrorUnwrap(t *testing.T) {
	base := stderrors.New("root cause")
	err := WrapInvalid(base, "Dispatcher", "Dispatch", "validate message")

	var ce *ClassifiedError
	if !stderrors.As(err, &ce) {
		t.Fatal("expected a ClassifiedError in the chain")
	}
	if ce.Component != "Dispatcher" || ce.Operation != "Dispatch" {
		t.Errorf("unexpected context: %q.%q", ce.Component, ce.Operation)
	}
	if !stderrors.Is(err, base) {
		t.Error("Unwrap chain should reach the base error")
	}
}
