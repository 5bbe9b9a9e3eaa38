package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/roomshare/internal/apperr"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		UserID:    "u-1",
		SessionID: 3,
		Token:     "tok",
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.UserID != "u-1" {
		t.Errorf("UserID = %q, want %q", got.UserID, "u-1")
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
	if got.Token != "tok" {
		t.Errorf("Token = %q, want %q", got.Token, "tok")
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestUserID(t *testing.T) {
	ctx := WithUser(context.Background(), "u-7")
	if UserID(ctx) != "u-7" {
		t.Errorf("UserID = %q, want %q", UserID(ctx), "u-7")
	}
}

func TestUserIDMissing(t *testing.T) {
	if UserID(context.Background()) != "" {
		t.Error("expected empty id for missing context")
	}
}

func TestCaller(t *testing.T) {
	id, err := Caller(WithUser(context.Background(), "u-9"))
	if err != nil {
		t.Fatalf("caller: %v", err)
	}
	if id != "u-9" {
		t.Errorf("id = %q, want %q", id, "u-9")
	}
}

func TestCallerMissing(t *testing.T) {
	_, err := Caller(context.Background())
	if !errors.Is(err, apperr.ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}
