// Package house manages houses and the memberships that tie profiles to them.
package house

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/roomshare/internal/apperr"
	"github.com/dukerupert/roomshare/internal/auth"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/metrics"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/dukerupert/roomshare/internal/store"
)

type Service struct {
	houses *store.HouseStore
	users  *store.UserStore
	pub    live.Publisher
	codes  CodeSource
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Service)

// WithCodeSource replaces the random invite code generator.
func WithCodeSource(src CodeSource) Option {
	return func(s *Service) { s.codes = src }
}

// WithClock replaces time.Now for membership timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(houses *store.HouseStore, users *store.UserStore, pub live.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		houses: houses,
		users:  users,
		pub:    pub,
		codes:  RandomCode,
		now:    time.Now,
		logger: logger.With("component", "house"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateHouse creates a house owned by the caller, makes the caller its
// admin and moves the caller's profile into it.
func (s *Service) CreateHouse(ctx context.Context, name string, description, rules *string) (h *model.House, err error) {
	defer func() { metrics.HouseOperations.WithLabelValues("create", metrics.Outcome(err)).Inc() }()

	userID, err := auth.Caller(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("house name is required")
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	h = &model.House{
		ID:          uuid.NewString(),
		Name:        name,
		Description: trimmedOrNil(description),
		Rules:       trimmedOrNil(rules),
		InviteCode:  code,
		CreatedBy:   userID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.houses.CreateWithOwner(ctx, h); err != nil {
		s.logger.Error("create house", "user_id", userID, "error", err)
		return nil, apperr.Transaction(err)
	}

	s.logger.Info("house created", "house_id", h.ID, "user_id", userID)
	s.publishMembership(ctx, userID, h.ID)
	return h, nil
}

// JoinHouse adds the caller to the house with the given invite code. Joining
// a house the caller already belongs to keeps the existing role and only
// moves the profile pointer.
func (s *Service) JoinHouse(ctx context.Context, inviteCode string) (h *model.House, err error) {
	defer func() { metrics.HouseOperations.WithLabelValues("join", metrics.Outcome(err)).Inc() }()

	userID, err := auth.Caller(ctx)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(inviteCode)
	if code == "" {
		return nil, apperr.ErrInvalidInviteCode
	}

	h, err = s.houses.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.ErrInvalidInviteCode
	}

	created, err := s.houses.Join(ctx, model.Membership{
		HouseID:  h.ID,
		UserID:   userID,
		Role:     model.RoleMember,
		JoinedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("join house", "house_id", h.ID, "user_id", userID, "error", err)
		return nil, apperr.Transaction(err)
	}

	s.logger.Info("house joined", "house_id", h.ID, "user_id", userID, "new_member", created)
	s.publishMembership(ctx, userID, h.ID)
	return h, nil
}

// LeaveHouse clears the caller's current house. The membership row is kept
// so the caller still shows up in the house's history and can rejoin with
// the same role.
func (s *Service) LeaveHouse(ctx context.Context) (err error) {
	defer func() { metrics.HouseOperations.WithLabelValues("leave", metrics.Outcome(err)).Inc() }()

	userID, houseID, err := CurrentHouse(ctx, s.users)
	if err != nil {
		return err
	}

	if _, err := s.users.SetCurrentHouse(ctx, userID, nil); err != nil {
		return err
	}
	s.logger.Info("house left", "house_id", houseID, "user_id", userID)
	s.publishMembership(ctx, userID, houseID)
	return nil
}

func (s *Service) GetHousemates(ctx context.Context, houseID string) ([]model.Housemate, error) {
	mates, err := s.houses.ListHousemates(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if mates == nil {
		mates = []model.Housemate{}
	}
	return mates, nil
}

// Housemates adapts GetHousemates to a live query.
func (s *Service) Housemates(ctx context.Context, houseID string) ([]model.Housemate, error) {
	return s.GetHousemates(ctx, houseID)
}

func (s *Service) GetHouseDetails(ctx context.Context, houseID string) (*model.House, error) {
	h, err := s.houses.GetByID(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("house %s: %w", houseID, apperr.ErrNotFound)
	}
	return h, nil
}

func (s *Service) GetMemberRole(ctx context.Context, houseID, userID string) (model.Role, error) {
	m, err := s.houses.GetMember(ctx, houseID, userID)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", fmt.Errorf("member %s of house %s: %w", userID, houseID, apperr.ErrNotFound)
	}
	return m.Role, nil
}

// UpdateHouseName renames a house. Only admins of that house may do so.
func (s *Service) UpdateHouseName(ctx context.Context, houseID, newName string) (*model.House, error) {
	userID, err := auth.Caller(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		return nil, apperr.Invalid("house name is required")
	}

	if err := RequireAdmin(ctx, s.houses, houseID, userID); err != nil {
		return nil, err
	}

	h, err := s.houses.UpdateName(ctx, houseID, name)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("house %s: %w", houseID, apperr.ErrNotFound)
	}
	s.publish(ctx, live.Topic(live.KindMembers, houseID))
	return h, nil
}

// ListHouses returns every house the caller has a membership in.
func (s *Service) ListHouses(ctx context.Context) ([]model.House, error) {
	userID, err := auth.Caller(ctx)
	if err != nil {
		return nil, err
	}
	houses, err := s.houses.ListHousesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if houses == nil {
		houses = []model.House{}
	}
	return houses, nil
}

func (s *Service) publishMembership(ctx context.Context, userID, houseID string) {
	s.publish(ctx, live.ProfileTopic(userID))
	s.publish(ctx, live.Topic(live.KindMembers, houseID))
}

func (s *Service) publish(ctx context.Context, topic string) {
	if err := s.pub.Publish(ctx, topic); err != nil {
		s.logger.Warn("publish change", "topic", topic, "error", err)
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
