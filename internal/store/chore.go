package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/roomshare/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(s scanner) (*model.Chore, error) {
	var c model.Chore
	var assignedTo, interval sql.NullString
	var dueDate sql.NullTime

	err := s.Scan(
		&c.ID, &c.HouseID, &c.Title, &c.Description, &assignedTo,
		&c.Status, &dueDate, &c.IsRotating, &interval, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.AssignedTo = stringPtr(assignedTo)
	if dueDate.Valid {
		c.DueDate = &dueDate.Time
	}
	if interval.Valid {
		ri := model.RotationInterval(interval.String)
		c.RotationInterval = &ri
	}
	return &c, nil
}

const choreCols = `id, house_id, title, description, assigned_to, status, due_date, is_rotating, rotation_interval, created_at`

func (s *ChoreStore) Create(ctx context.Context, c *model.Chore) (*model.Chore, error) {
	var dueDate sql.NullTime
	if c.DueDate != nil {
		dueDate = sql.NullTime{Time: *c.DueDate, Valid: true}
	}
	var interval sql.NullString
	if c.RotationInterval != nil {
		interval = sql.NullString{String: string(*c.RotationInterval), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chores (`+choreCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.HouseID, c.Title, c.Description, nullString(c.AssignedTo),
		c.Status, dueDate, c.IsRotating, interval, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	return s.GetByID(ctx, c.ID)
}

func (s *ChoreStore) GetByID(ctx context.Context, id string) (*model.Chore, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// ListByHouse returns every chore of houseID in insertion order.
func (s *ChoreStore) ListByHouse(ctx context.Context, houseID string) ([]model.Chore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+choreCols+` FROM chores WHERE house_id = ? ORDER BY rowid ASC`,
		houseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// SetStatus writes status unconditionally. It reports false when no chore
// with that id exists in houseID.
func (s *ChoreStore) SetStatus(ctx context.Context, houseID, id string, status model.ChoreStatus) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE chores SET status = ? WHERE id = ? AND house_id = ?`,
		status, id, houseID,
	)
	if err != nil {
		return false, fmt.Errorf("update chore status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
