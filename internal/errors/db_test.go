package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_Nil(t *testing.T) {
	if got := MapDBError(nil); got != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", got)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	if got := MapDBError(context.DeadlineExceeded); !IsTimeout(got) {
		t.Errorf("MapDBError(DeadlineExceeded) = %v, want timeout", got)
	}
	if got := MapDBError(context.Canceled); !IsCanceled(got) {
		t.Errorf("MapDBError(Canceled) = %v, want canceled", got)
	}
	wrapped := fmt.Errorf("query: %w", context.DeadlineExceeded)
	if got := MapDBError(wrapped); !IsTimeout(got) {
		t.Errorf("MapDBError(wrapped DeadlineExceeded) = %v, want timeout", got)
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	got := MapDBError(pgx.ErrNoRows)
	if !IsNotFound(got) {
		t.Errorf("MapDBError(ErrNoRows) = %v, want not_found", got)
	}
	if !errors.Is(got, pgx.ErrNoRows) {
		t.Error("mapped error should still match pgx.ErrNoRows via errors.Is")
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (scheduler_id, hash)=(boefje-acme, ff00) already exists.",
	}

	got := MapDBError(pgErr)
	if !IsConflict(got) {
		t.Fatalf("MapDBError(unique violation) = %v, want conflict", got)
	}
	if field := GetField(got); field != "scheduler_id, hash" {
		t.Errorf("GetField() = %q, want %q", field, "scheduler_id, hash")
	}
}

func TestMapDBError_UniqueViolation_ColumnName(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       pgerrcode.UniqueViolation,
		ColumnName: "hash",
	}

	got := MapDBError(pgErr)
	if field := GetField(got); field != "hash" {
		t.Errorf("GetField() = %q, want %q", field, "hash")
	}
}

func TestMapDBError_NotNullViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       pgerrcode.NotNullViolation,
		ColumnName: "priority",
	}

	got := MapDBError(pgErr)
	if !IsValidation(got) {
		t.Errorf("MapDBError(not null) = %v, want validation", got)
	}
	if field := GetField(got); field != "priority" {
		t.Errorf("GetField() = %q, want %q", field, "priority")
	}
}

func TestMapDBError_CheckViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.CheckViolation}
	if got := MapDBError(pgErr); !IsValidation(got) {
		t.Errorf("MapDBError(check violation) = %v, want validation", got)
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	got := MapDBError(pgErr)
	if !IsInternal(got) {
		t.Errorf("MapDBError(serialization failure) = %v, want internal", got)
	}
	var cause *pgconn.PgError
	if !errors.As(got, &cause) {
		t.Error("mapped error should preserve *pgconn.PgError cause")
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	plain := errors.New("not a database error")
	if got := MapDBError(plain); got != plain { //nolint:errorlint // identity check on purpose
		t.Errorf("MapDBError(plain) = %v, want original error", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", pgErr)) {
		t.Error("IsUniqueViolation should see through wrapping")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Error("IsUniqueViolation on plain error should be false")
	}
}
