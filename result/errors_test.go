package result

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/lukemcguire/canonhost/canon"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{
			name: "nil error",
			err:  nil,
			want: CategoryUnknown,
		},
		{
			name: "absent input",
			err:  canon.ErrInvalidInput,
			want: CategoryInvalidInput,
		},
		{
			name: "wrapped absent input",
			err:  fmt.Errorf("line 3: %w", canon.ErrInvalidInput),
			want: CategoryInvalidInput,
		},
		{
			name: "absent input by message",
			err:  errors.New("remote: " + canon.ErrInvalidInput.Error()),
			want: CategoryInvalidInput,
		},
		{
			name: "decode error",
			err:  &DecodeError{Line: 2, Err: &json.SyntaxError{}},
			want: CategoryDecode,
		},
		{
			name: "canceled",
			err:  fmt.Errorf("worker: %w", context.Canceled),
			want: CategoryCanceled,
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: CategoryCanceled,
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	inner := errors.New("unexpected end of JSON input")
	err := &DecodeError{Line: 7, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected DecodeError to unwrap to its cause")
	}
	if err.Error() != "decode line: unexpected end of JSON input" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestFormatCategory(t *testing.T) {
	tests := []struct {
		cat  ErrorCategory
		want string
	}{
		{CategoryInvalidInput, "Invalid Input"},
		{CategoryDecode, "Undecodable Lines"},
		{CategoryCanceled, "Canceled"},
		{CategoryUnknown, "Other Errors"},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			got := FormatCategory(tt.cat)
			if got != tt.want {
				t.Errorf("FormatCategory(%v) = %v, want %v", tt.cat, got, tt.want)
			}
		})
	}
}
