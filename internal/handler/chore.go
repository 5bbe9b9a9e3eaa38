package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/roomshare/internal/chore"
	"github.com/dukerupert/roomshare/internal/house"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/dukerupert/roomshare/internal/store"
)

type ChoreHandler struct {
	register *chore.Register
	users    *store.UserStore
	logger   *slog.Logger
}

func NewChoreHandler(reg *chore.Register, us *store.UserStore, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{register: reg, users: us, logger: logger.With("component", "chore_handler")}
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req chore.NewChore
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.register.AddChore(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "failed to create chore", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	_, houseID, err := house.CurrentHouse(r.Context(), h.users)
	if err != nil {
		writeError(w, h.logger, "failed to list chores", err)
		return
	}
	chores, err := h.register.ListChores(r.Context(), houseID)
	if err != nil {
		writeError(w, h.logger, "failed to list chores", err)
		return
	}
	writeJSON(w, http.StatusOK, chores)
}

// Toggle flips the chore from the status the client last saw.
func (h *ChoreHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.ChoreStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !chore.Valid(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be pending or completed"})
		return
	}

	c, err := h.register.ToggleStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, h.logger, "failed to toggle chore", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.register.DeleteChore(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, "failed to delete chore", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
