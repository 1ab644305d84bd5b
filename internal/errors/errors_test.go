package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "resource not found",
			},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		wantMsg  string
	}{
		{"NotFound", NotFound("resource not found"), ErrCodeNotFound, "resource not found"},
		{"NotFoundf", NotFoundf("task %s not found", "abc"), ErrCodeNotFound, "task abc not found"},
		{"Conflict", Conflict("row already exists"), ErrCodeConflict, "row already exists"},
		{"Validation", Validation("invalid input"), ErrCodeValidation, "invalid input"},
		{"QueueEmpty", QueueEmpty("boefje-acme"), ErrCodeQueueEmpty, "queue boefje-acme is empty"},
		{"QueueFull", QueueFull("boefje-acme"), ErrCodeQueueFull, "queue boefje-acme is full"},
		{"NotAllowed", NotAllowed("item already on queue"), ErrCodeNotAllowed, "item already on queue"},
		{"NotAllowedf", NotAllowedf("hash %s on queue", "ff"), ErrCodeNotAllowed, "hash ff on queue"},
		{"Unavailable", Unavailable("katalogus unreachable"), ErrCodeUnavailable, "katalogus unreachable"},
		{"Internal", Internal("internal error"), ErrCodeInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("%s Code = %v, want %v", tt.name, tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("%s Message = %q, want %q", tt.name, tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("priority", "priority must not be negative")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "priority" {
		t.Errorf("ValidationField().Field = %v, want %v", err.Field, "priority")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeUnavailable, "bytes API unreachable")

	if err.Code != ErrCodeUnavailable {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeUnavailable)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() should preserve cause for errors.Is")
	}
	if Wrap(nil, ErrCodeInternal, "whatever") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeInternal, "tick %d failed", 3)

	if err.Message != "tick 3 failed" {
		t.Errorf("Wrapf().Message = %q, want %q", err.Message, "tick 3 failed")
	}
	if Wrapf(nil, ErrCodeInternal, "whatever") != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"IsNotFound direct", NotFound("x"), IsNotFound, true},
		{"IsNotFound wrapped", fmt.Errorf("outer: %w", NotFound("x")), IsNotFound, true},
		{"IsNotFound mismatch", Conflict("x"), IsNotFound, false},
		{"IsQueueEmpty direct", QueueEmpty("q"), IsQueueEmpty, true},
		{"IsQueueEmpty wrapped", fmt.Errorf("pop: %w", QueueEmpty("q")), IsQueueEmpty, true},
		{"IsQueueFull direct", QueueFull("q"), IsQueueFull, true},
		{"IsNotAllowed direct", NotAllowed("x"), IsNotAllowed, true},
		{"IsUnavailable direct", Unavailable("x"), IsUnavailable, true},
		{"IsValidation direct", Validation("x"), IsValidation, true},
		{"IsConflict direct", Conflict("x"), IsConflict, true},
		{"IsInternal on plain error", errors.New("plain"), IsInternal, false},
		{"IsTimeout on nil", nil, IsTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(QueueFull("q")); got != ErrCodeQueueFull {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeQueueFull)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() on plain error = %v, want empty", got)
	}
	if got := GetCode(fmt.Errorf("outer: %w", NotAllowed("x"))); got != ErrCodeNotAllowed {
		t.Errorf("GetCode() wrapped = %v, want %v", got, ErrCodeNotAllowed)
	}
}

func TestGetField(t *testing.T) {
	if got := GetField(ValidationField("hash", "bad hash")); got != "hash" {
		t.Errorf("GetField() = %v, want hash", got)
	}
	if got := GetField(errors.New("plain")); got != "" {
		t.Errorf("GetField() on plain error = %v, want empty", got)
	}
}
