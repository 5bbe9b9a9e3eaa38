package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/roomshare/internal/announcement"
	"github.com/dukerupert/roomshare/internal/house"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/dukerupert/roomshare/internal/store"
)

type AnnouncementHandler struct {
	board  *announcement.Board
	users  *store.UserStore
	logger *slog.Logger
}

func NewAnnouncementHandler(b *announcement.Board, us *store.UserStore, logger *slog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{board: b, users: us, logger: logger.With("component", "announcement_handler")}
}

func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string         `json:"title"`
		Content  string         `json:"content"`
		Priority model.Priority `json:"priority"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.board.AddAnnouncement(r.Context(), req.Title, req.Content, req.Priority)
	if err != nil {
		writeError(w, h.logger, "failed to post announcement", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// List returns the board newest first.
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	_, houseID, err := house.CurrentHouse(r.Context(), h.users)
	if err != nil {
		writeError(w, h.logger, "failed to list announcements", err)
		return
	}
	list, err := h.board.ListAnnouncements(r.Context(), houseID)
	if err != nil {
		writeError(w, h.logger, "failed to list announcements", err)
		return
	}
	writeJSON(w, http.StatusOK, announcement.SortByRecency(list))
}
