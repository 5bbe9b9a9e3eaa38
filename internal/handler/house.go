package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/roomshare/internal/apperr"
	"github.com/dukerupert/roomshare/internal/auth"
	"github.com/dukerupert/roomshare/internal/house"
)

type HouseHandler struct {
	houses *house.Service
	logger *slog.Logger
}

func NewHouseHandler(svc *house.Service, logger *slog.Logger) *HouseHandler {
	return &HouseHandler{houses: svc, logger: logger.With("component", "house_handler")}
}

func (h *HouseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Rules       string `json:"rules"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.houses.CreateHouse(r.Context(), req.Name, optional(req.Description), optional(req.Rules))
	if err != nil {
		writeError(w, h.logger, "failed to create house", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HouseHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InviteCode string `json:"invite_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	joined, err := h.houses.JoinHouse(r.Context(), req.InviteCode)
	if err != nil {
		writeError(w, h.logger, "failed to join house", err)
		return
	}
	writeJSON(w, http.StatusOK, joined)
}

func (h *HouseHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.houses.LeaveHouse(r.Context()); err != nil {
		writeError(w, h.logger, "failed to leave house", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HouseHandler) List(w http.ResponseWriter, r *http.Request) {
	houses, err := h.houses.ListHouses(r.Context())
	if err != nil {
		writeError(w, h.logger, "failed to list houses", err)
		return
	}
	writeJSON(w, http.StatusOK, houses)
}

// requireMember rejects callers with no membership in the house named by
// the {id} path value.
func (h *HouseHandler) requireMember(w http.ResponseWriter, r *http.Request) (string, bool) {
	houseID := r.PathValue("id")
	_, err := h.houses.GetMemberRole(r.Context(), houseID, auth.UserID(r.Context()))
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "not a member of this house"})
		return "", false
	}
	if err != nil {
		writeError(w, h.logger, "failed to check membership", err)
		return "", false
	}
	return houseID, true
}

func (h *HouseHandler) Get(w http.ResponseWriter, r *http.Request) {
	houseID, ok := h.requireMember(w, r)
	if !ok {
		return
	}
	details, err := h.houses.GetHouseDetails(r.Context(), houseID)
	if err != nil {
		writeError(w, h.logger, "failed to get house", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *HouseHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.houses.UpdateHouseName(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, h.logger, "failed to rename house", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *HouseHandler) Housemates(w http.ResponseWriter, r *http.Request) {
	houseID, ok := h.requireMember(w, r)
	if !ok {
		return
	}
	mates, err := h.houses.GetHousemates(r.Context(), houseID)
	if err != nil {
		writeError(w, h.logger, "failed to list housemates", err)
		return
	}
	writeJSON(w, http.StatusOK, mates)
}

func (h *HouseHandler) MemberRole(w http.ResponseWriter, r *http.Request) {
	houseID, ok := h.requireMember(w, r)
	if !ok {
		return
	}
	userID := r.PathValue("userID")
	role, err := h.houses.GetMemberRole(r.Context(), houseID, userID)
	if err != nil {
		writeError(w, h.logger, "failed to get role", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"house_id": houseID, "user_id": userID, "role": string(role)})
}
