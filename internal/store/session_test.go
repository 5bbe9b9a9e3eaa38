package store

import (
	"context"
	"testing"
	"time"
)

func TestSessionCreate(t *testing.T) {
	db := setupTestDB(t)
	us, ss := NewUserStore(db), NewSessionStore(db)

	u := createTestUser(t, us, "alice@example.com", "Alice")
	sess, err := ss.Create(context.Background(), u.ID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.UserID != u.ID {
		t.Errorf("user_id = %q, want %q", sess.UserID, u.ID)
	}
}

func TestSessionGetByToken(t *testing.T) {
	db := setupTestDB(t)
	us, ss := NewUserStore(db), NewSessionStore(db)
	ctx := context.Background()

	u := createTestUser(t, us, "alice@example.com", "Alice")
	created, _ := ss.Create(ctx, u.ID, time.Hour)

	sess, err := ss.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil || sess.ID != created.ID {
		t.Fatalf("got %+v, want session %d", sess, created.ID)
	}

	missing, err := ss.GetByToken(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionExpired(t *testing.T) {
	db := setupTestDB(t)
	us, ss := NewUserStore(db), NewSessionStore(db)
	ctx := context.Background()

	u := createTestUser(t, us, "alice@example.com", "Alice")
	expired, _ := ss.Create(ctx, u.ID, -time.Hour)
	ss.Create(ctx, u.ID, time.Hour)

	sess, err := ss.GetByToken(ctx, expired.Token)
	if err != nil {
		t.Fatalf("get expired: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for expired session")
	}

	n, err := ss.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}

func TestSessionDelete(t *testing.T) {
	db := setupTestDB(t)
	us, ss := NewUserStore(db), NewSessionStore(db)
	ctx := context.Background()

	u := createTestUser(t, us, "alice@example.com", "Alice")
	a, _ := ss.Create(ctx, u.ID, time.Hour)
	b, _ := ss.Create(ctx, u.ID, time.Hour)

	if err := ss.DeleteByToken(ctx, a.Token); err != nil {
		t.Fatalf("delete by token: %v", err)
	}
	if got, _ := ss.GetByToken(ctx, a.Token); got != nil {
		t.Error("expected nil after delete")
	}

	if err := ss.DeleteByUserID(ctx, u.ID); err != nil {
		t.Fatalf("delete by user: %v", err)
	}
	if got, _ := ss.GetByToken(ctx, b.Token); got != nil {
		t.Error("expected nil after delete by user")
	}
}
