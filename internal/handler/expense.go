package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/roomshare/internal/house"
	"github.com/dukerupert/roomshare/internal/ledger"
	"github.com/dukerupert/roomshare/internal/store"
)

type ExpenseHandler struct {
	ledger *ledger.Service
	users  *store.UserStore
	logger *slog.Logger
}

func NewExpenseHandler(l *ledger.Service, us *store.UserStore, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{ledger: l, users: us, logger: logger.With("component", "expense_handler")}
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ledger.NewExpense
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := h.ledger.AddExpense(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "failed to add expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	_, houseID, err := house.CurrentHouse(r.Context(), h.users)
	if err != nil {
		writeError(w, h.logger, "failed to list expenses", err)
		return
	}
	expenses, err := h.ledger.ListExpenses(r.Context(), houseID)
	if err != nil {
		writeError(w, h.logger, "failed to list expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) Balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.ledger.Balances(r.Context())
	if err != nil {
		writeError(w, h.logger, "failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
