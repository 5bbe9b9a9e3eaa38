package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/roomshare/internal/model"
)

type HouseStore struct {
	db *sql.DB
}

func NewHouseStore(db *sql.DB) *HouseStore {
	return &HouseStore{db: db}
}

func scanHouse(s scanner) (*model.House, error) {
	var h model.House
	var description, rules sql.NullString
	err := s.Scan(&h.ID, &h.Name, &description, &rules, &h.InviteCode, &h.CreatedBy, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	h.Description = stringPtr(description)
	h.Rules = stringPtr(rules)
	return &h, nil
}

func scanMembership(s scanner) (*model.Membership, error) {
	var m model.Membership
	err := s.Scan(&m.HouseID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const houseCols = `id, name, description, rules, invite_code, created_by, created_at`
const membershipCols = `house_id, user_id, role, joined_at`

// CreateWithOwner inserts h, an admin membership for h.CreatedBy and points the
// creator's profile at the new house, all in one transaction.
func (s *HouseStore) CreateWithOwner(ctx context.Context, h *model.House) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO houses (`+houseCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, nullString(h.Description), nullString(h.Rules), h.InviteCode, h.CreatedBy, h.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert house: %w", err)
	}

	if err := insertMembership(ctx, tx, model.Membership{
		HouseID:  h.ID,
		UserID:   h.CreatedBy,
		Role:     model.RoleAdmin,
		JoinedAt: h.CreatedAt,
	}); err != nil {
		return err
	}

	ok, err := setCurrentHouse(ctx, tx, h.CreatedBy, &h.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("set current house: no profile for user %s", h.CreatedBy)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Join adds m unless a membership for (m.HouseID, m.UserID) already exists,
// then points the user's profile at the house, in one transaction. It reports
// whether a new membership row was inserted. The insert is a single
// statement, so concurrent joins by the same user cannot collide on the key.
func (s *HouseStore) Join(ctx context.Context, m model.Membership) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO house_members (`+membershipCols+`) VALUES (?, ?, ?, ?)
		 ON CONFLICT (house_id, user_id) DO NOTHING`,
		m.HouseID, m.UserID, m.Role, m.JoinedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert member: %w", err)
	}

	ok, err := setCurrentHouse(ctx, tx, m.UserID, &m.HouseID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("set current house: no profile for user %s", m.UserID)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return n > 0, nil
}

func insertMembership(ctx context.Context, q querier, m model.Membership) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO house_members (`+membershipCols+`) VALUES (?, ?, ?, ?)`,
		m.HouseID, m.UserID, m.Role, m.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (s *HouseStore) GetByID(ctx context.Context, id string) (*model.House, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+houseCols+` FROM houses WHERE id = ?`, id)
	h, err := scanHouse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get house: %w", err)
	}
	return h, nil
}

func (s *HouseStore) GetByInviteCode(ctx context.Context, code string) (*model.House, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+houseCols+` FROM houses WHERE invite_code = ?`, code)
	h, err := scanHouse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get house by invite code: %w", err)
	}
	return h, nil
}

func (s *HouseStore) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM houses WHERE invite_code = ?`, code).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check invite code: %w", err)
	}
	return n > 0, nil
}

func (s *HouseStore) UpdateName(ctx context.Context, id, name string) (*model.House, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE houses SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update house: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *HouseStore) GetMember(ctx context.Context, houseID, userID string) (*model.Membership, error) {
	return getMembership(ctx, s.db, houseID, userID)
}

func getMembership(ctx context.Context, q querier, houseID, userID string) (*model.Membership, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+membershipCols+` FROM house_members WHERE house_id = ? AND user_id = ?`,
		houseID, userID,
	)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *HouseStore) ListMembers(ctx context.Context, houseID string) ([]model.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipCols+` FROM house_members WHERE house_id = ? ORDER BY joined_at ASC, rowid ASC`,
		houseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// ListHousemates returns the profile of every membership row of houseID,
// including members whose profile has since moved elsewhere.
func (s *HouseStore) ListHousemates(ctx context.Context, houseID string) ([]model.Housemate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.full_name, u.current_house_id, u.created_at, u.updated_at, hm.role, hm.joined_at
		 FROM house_members hm
		 JOIN users u ON u.id = hm.user_id
		 WHERE hm.house_id = ?
		 ORDER BY hm.joined_at ASC, hm.rowid ASC`,
		houseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list housemates: %w", err)
	}
	defer rows.Close()

	var mates []model.Housemate
	for rows.Next() {
		var hm model.Housemate
		var current sql.NullString
		if err := rows.Scan(
			&hm.ID, &hm.Email, &hm.FullName, &current, &hm.CreatedAt, &hm.UpdatedAt,
			&hm.Role, &hm.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("scan housemate: %w", err)
		}
		hm.CurrentHouseID = stringPtr(current)
		hm.Current = current.Valid && current.String == houseID
		mates = append(mates, hm)
	}
	return mates, rows.Err()
}

func (s *HouseStore) ListHousesForUser(ctx context.Context, userID string) ([]model.House, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT h.id, h.name, h.description, h.rules, h.invite_code, h.created_by, h.created_at
		 FROM houses h
		 JOIN house_members hm ON h.id = hm.house_id
		 WHERE hm.user_id = ?
		 ORDER BY h.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list houses for user: %w", err)
	}
	defer rows.Close()

	var houses []model.House
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan house: %w", err)
		}
		houses = append(houses, *h)
	}
	return houses, rows.Err()
}
