package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/roomshare/internal/model"
)

type AnnouncementStore struct {
	db *sql.DB
}

func NewAnnouncementStore(db *sql.DB) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

func scanAnnouncement(s scanner) (*model.Announcement, error) {
	var a model.Announcement
	err := s.Scan(&a.ID, &a.HouseID, &a.AuthorID, &a.Title, &a.Content, &a.Priority, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const announcementCols = `id, house_id, author_id, title, content, priority, created_at`

func (s *AnnouncementStore) Create(ctx context.Context, a *model.Announcement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (`+announcementCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.HouseID, a.AuthorID, a.Title, a.Content, a.Priority, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	return nil
}

// ListByHouse returns the announcements of houseID in insertion order. Callers
// that want newest-first sort themselves.
func (s *AnnouncementStore) ListByHouse(ctx context.Context, houseID string) ([]model.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+announcementCols+` FROM announcements WHERE house_id = ? ORDER BY rowid ASC`,
		houseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var out []model.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
