package ledger

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/roomshare/internal/apperr"
	"github.com/dukerupert/roomshare/internal/house"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/dukerupert/roomshare/internal/store"
)

// NewExpense is the input to AddExpense. An empty PaidBy means the caller paid.
type NewExpense struct {
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	PaidBy      string   `json:"paid_by"`
	SplitWith   []string `json:"split_with"`
}

// Balances is a viewer's position in its current house.
type Balances struct {
	HouseID string  `json:"house_id"`
	Balance float64 `json:"balance"`
	Matrix  []Entry `json:"matrix"`
}

type Service struct {
	expenses *store.ExpenseStore
	houses   *store.HouseStore
	users    *store.UserStore
	pub      live.Publisher
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(expenses *store.ExpenseStore, houses *store.HouseStore, users *store.UserStore, pub live.Publisher, logger *slog.Logger) *Service {
	return &Service{
		expenses: expenses,
		houses:   houses,
		users:    users,
		pub:      pub,
		now:      time.Now,
		logger:   logger.With("component", "ledger"),
	}
}

// AddExpense records an expense in the caller's current house.
func (s *Service) AddExpense(ctx context.Context, in NewExpense) (*model.Expense, error) {
	userID, houseID, err := house.CurrentHouse(ctx, s.users)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperr.Invalid("description is required")
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return nil, apperr.Invalid("amount must be a positive number")
	}

	paidBy := strings.TrimSpace(in.PaidBy)
	if paidBy == "" {
		paidBy = userID
	}
	split := normalizeSplit(in.SplitWith, paidBy)

	if err := house.RequireMember(ctx, s.houses, houseID, paidBy); err != nil {
		return nil, err
	}
	for _, id := range split {
		if err := house.RequireMember(ctx, s.houses, houseID, id); err != nil {
			return nil, err
		}
	}

	e := &model.Expense{
		ID:          uuid.NewString(),
		HouseID:     houseID,
		Description: description,
		Amount:      in.Amount,
		PaidBy:      paidBy,
		Date:        s.now().UTC(),
		SplitWith:   split,
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		s.logger.Error("add expense", "house_id", houseID, "error", err)
		return nil, err
	}

	s.logger.Info("expense added", "house_id", houseID, "expense_id", e.ID, "participants", len(split)+1)
	if err := s.pub.Publish(ctx, live.Topic(live.KindExpenses, houseID)); err != nil {
		s.logger.Warn("publish change", "house_id", houseID, "error", err)
	}
	return e, nil
}

// ListExpenses returns the expenses of houseID in store order.
func (s *Service) ListExpenses(ctx context.Context, houseID string) ([]model.Expense, error) {
	expenses, err := s.expenses.ListByHouse(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	return expenses, nil
}

// Balances computes the caller's net balance and the simplified pairwise
// matrix for its current house.
func (s *Service) Balances(ctx context.Context) (*Balances, error) {
	userID, houseID, err := house.CurrentHouse(ctx, s.users)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ListExpenses(ctx, houseID)
	if err != nil {
		return nil, err
	}
	return &Balances{
		HouseID: houseID,
		Balance: ComputeBalance(expenses, userID),
		Matrix:  PairwiseBalances(expenses).Simplified().Entries(),
	}, nil
}

// normalizeSplit trims, drops blanks and duplicates, and removes the payer,
// keeping first-seen order.
func normalizeSplit(ids []string, payer string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{payer: true}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
