package chore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/roomshare/internal/apperr"
	"github.com/dukerupert/roomshare/internal/house"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/dukerupert/roomshare/internal/store"
)

// NewChore is the input to AddChore.
type NewChore struct {
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	AssignedTo       *string                 `json:"assigned_to"`
	DueDate          *time.Time              `json:"due_date"`
	IsRotating       bool                    `json:"is_rotating"`
	RotationInterval *model.RotationInterval `json:"rotation_interval"`
}

type Register struct {
	chores *store.ChoreStore
	houses *store.HouseStore
	users  *store.UserStore
	pub    live.Publisher
	now    func() time.Time
	logger *slog.Logger
}

func NewRegister(chores *store.ChoreStore, houses *store.HouseStore, users *store.UserStore, pub live.Publisher, logger *slog.Logger) *Register {
	return &Register{
		chores: chores,
		houses: houses,
		users:  users,
		pub:    pub,
		now:    time.Now,
		logger: logger.With("component", "chore"),
	}
}

// AddChore creates a pending chore in the caller's current house.
func (r *Register) AddChore(ctx context.Context, in NewChore) (*model.Chore, error) {
	_, houseID, err := house.CurrentHouse(ctx, r.users)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if in.RotationInterval != nil {
		if *in.RotationInterval != model.RotationWeekly {
			return nil, apperr.Invalid("unsupported rotation interval %q", *in.RotationInterval)
		}
		if !in.IsRotating {
			return nil, apperr.Invalid("rotation interval requires a rotating chore")
		}
	}

	var assignee *string
	if in.AssignedTo != nil && strings.TrimSpace(*in.AssignedTo) != "" {
		id := strings.TrimSpace(*in.AssignedTo)
		if err := house.RequireMember(ctx, r.houses, houseID, id); err != nil {
			return nil, err
		}
		assignee = &id
	}

	var due *time.Time
	if in.DueDate != nil {
		d := in.DueDate.UTC()
		due = &d
	}

	c, err := r.chores.Create(ctx, &model.Chore{
		ID:               uuid.NewString(),
		HouseID:          houseID,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		AssignedTo:       assignee,
		Status:           model.ChorePending,
		DueDate:          due,
		IsRotating:       in.IsRotating,
		RotationInterval: in.RotationInterval,
		CreatedAt:        r.now().UTC(),
	})
	if err != nil {
		r.logger.Error("add chore", "house_id", houseID, "error", err)
		return nil, err
	}

	r.logger.Info("chore added", "house_id", houseID, "chore_id", c.ID)
	r.publish(ctx, houseID)
	return c, nil
}

// ToggleStatus writes the opposite of current, as seen by the caller. There
// is no compare-and-swap: two concurrent toggles from the same view both
// write the same value and the last one wins.
func (r *Register) ToggleStatus(ctx context.Context, choreID string, current model.ChoreStatus) (*model.Chore, error) {
	_, houseID, err := house.CurrentHouse(ctx, r.users)
	if err != nil {
		return nil, err
	}

	next := Toggle(current)
	ok, err := r.chores.SetStatus(ctx, houseID, choreID, next)
	if err != nil {
		r.logger.Error("toggle chore", "chore_id", choreID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("chore %s: %w", choreID, apperr.ErrNotFound)
	}

	r.publish(ctx, houseID)
	return r.chores.GetByID(ctx, choreID)
}

// DeleteChore is not implemented yet; it only records the request.
func (r *Register) DeleteChore(ctx context.Context, choreID string) error {
	r.logger.InfoContext(ctx, "delete chore requested", "chore_id", choreID)
	return nil
}

// ListChores returns the chores of houseID in store order.
func (r *Register) ListChores(ctx context.Context, houseID string) ([]model.Chore, error) {
	chores, err := r.chores.ListByHouse(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	return chores, nil
}

func (r *Register) publish(ctx context.Context, houseID string) {
	if err := r.pub.Publish(ctx, live.Topic(live.KindChores, houseID)); err != nil {
		r.logger.Warn("publish change", "house_id", houseID, "error", err)
	}
}
