package apperr

import (
	"database/sql"
	"errors"
	"testing"
)

func TestInvalidMatchesSentinel(t *testing.T) {
	err := Invalid("amount must be positive, got %v", -3)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got, want := err.Error(), "invalid input: amount must be positive, got -3"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestTransactionKeepsCause(t *testing.T) {
	err := Transaction(sql.ErrConnDone)
	if !errors.Is(err, ErrTransactionFailed) {
		t.Error("expected ErrTransactionFailed")
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Error("expected cause to remain matchable")
	}
	if Transaction(nil) != nil {
		t.Error("expected nil for nil cause")
	}
}
