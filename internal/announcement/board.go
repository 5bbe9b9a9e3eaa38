// Package announcement posts notices to a house board.
package announcement

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/roomshare/internal/apperr"
	"github.com/dukerupert/roomshare/internal/house"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/dukerupert/roomshare/internal/store"
)

type Board struct {
	announcements *store.AnnouncementStore
	houses        *store.HouseStore
	users         *store.UserStore
	pub           live.Publisher
	now           func() time.Time
	logger        *slog.Logger
}

type Option func(*Board)

// WithClock replaces time.Now for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

func NewBoard(announcements *store.AnnouncementStore, houses *store.HouseStore, users *store.UserStore, pub live.Publisher, logger *slog.Logger, opts ...Option) *Board {
	b := &Board{
		announcements: announcements,
		houses:        houses,
		users:         users,
		pub:           pub,
		now:           time.Now,
		logger:        logger.With("component", "announcement"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddAnnouncement posts to the caller's current house. Only admins may
// post. An empty priority means normal.
func (b *Board) AddAnnouncement(ctx context.Context, title, content string, priority model.Priority) (*model.Announcement, error) {
	userID, houseID, err := house.CurrentHouse(ctx, b.users)
	if err != nil {
		return nil, err
	}
	if err := house.RequireAdmin(ctx, b.houses, houseID, userID); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if content == "" {
		return nil, apperr.Invalid("content is required")
	}
	switch priority {
	case "":
		priority = model.PriorityNormal
	case model.PriorityNormal, model.PriorityUrgent:
	default:
		return nil, apperr.Invalid("unknown priority %q", priority)
	}

	a := &model.Announcement{
		ID:        uuid.NewString(),
		HouseID:   houseID,
		AuthorID:  userID,
		Title:     title,
		Content:   content,
		Priority:  priority,
		CreatedAt: b.now().UTC(),
	}
	if err := b.announcements.Create(ctx, a); err != nil {
		b.logger.Error("add announcement", "house_id", houseID, "error", err)
		return nil, err
	}

	b.logger.Info("announcement posted", "house_id", houseID, "announcement_id", a.ID, "priority", priority)
	if err := b.pub.Publish(ctx, live.Topic(live.KindAnnouncements, houseID)); err != nil {
		b.logger.Warn("publish change", "house_id", houseID, "error", err)
	}
	return a, nil
}

// ListAnnouncements returns the announcements of houseID in store order.
func (b *Board) ListAnnouncements(ctx context.Context, houseID string) ([]model.Announcement, error) {
	out, err := b.announcements.ListByHouse(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Announcement{}
	}
	return out, nil
}

// SortByRecency returns a copy of list ordered newest first. Announcements
// with equal timestamps keep their relative order.
func SortByRecency(list []model.Announcement) []model.Announcement {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b model.Announcement) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
