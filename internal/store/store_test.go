package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dukerupert/roomshare/internal/database"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/google/uuid"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, us *UserStore, email, name string) *model.User {
	t.Helper()
	u, err := us.Create(context.Background(), email, name, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func createTestHouse(t *testing.T, hs *HouseStore, owner *model.User, name, code string) *model.House {
	t.Helper()
	h := &model.House{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: code,
		CreatedBy:  owner.ID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := hs.CreateWithOwner(context.Background(), h); err != nil {
		t.Fatalf("create house %s: %v", name, err)
	}
	return h
}
