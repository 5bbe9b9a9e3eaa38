package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/roomshare/internal/model"
	"github.com/google/uuid"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	var houseID sql.NullString
	err := s.Scan(&u.ID, &u.Email, &u.FullName, &houseID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.CurrentHouseID = stringPtr(houseID)
	return &u, nil
}

const userCols = `id, email, full_name, current_house_id, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, email, fullName, passwordHash string) (*model.User, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, email, fullName, passwordHash, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return getUser(ctx, s.db, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return getUser(ctx, s.db, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
}

func getUser(ctx context.Context, q querier, query string, arg any) (*model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// PasswordHash returns the user id and stored hash for email, or empty strings
// when no such user exists.
func (s *UserStore) PasswordHash(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("get password hash: %w", err)
	}
	return id, hash, nil
}

func (s *UserStore) UpdateName(ctx context.Context, id, fullName string) (*model.User, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, updated_at = ? WHERE id = ?`,
		fullName, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(ctx, id)
}

// SetCurrentHouse points the profile at houseID, or clears the pointer when
// houseID is nil. It reports whether a profile row was updated.
func (s *UserStore) SetCurrentHouse(ctx context.Context, userID string, houseID *string) (bool, error) {
	return setCurrentHouse(ctx, s.db, userID, houseID)
}

func setCurrentHouse(ctx context.Context, q querier, userID string, houseID *string) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE users SET current_house_id = ?, updated_at = ? WHERE id = ?`,
		nullString(houseID), time.Now().UTC(), userID,
	)
	if err != nil {
		return false, fmt.Errorf("set current house: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
