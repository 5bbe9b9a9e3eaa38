// Package dashboard keeps one viewer's live view of its current house.
package dashboard

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/dukerupert/roomshare/internal/ledger"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/model"
)

// Sources are the house-scoped reads a session subscribes to.
type Sources struct {
	Chores        live.Query[model.Chore]
	Expenses      live.Query[model.Expense]
	Announcements live.Query[model.Announcement]
	Members       live.Query[model.Housemate]
}

// State is a snapshot of everything the session has received for its
// current house. An empty HouseID is the no-house state.
type State struct {
	HouseID       string
	Chores        []model.Chore
	Expenses      []model.Expense
	Announcements []model.Announcement
	Members       []model.Housemate
	Balance       float64
	Matrix        ledger.Matrix
	Loaded        map[live.Kind]bool
	Errors        map[live.Kind]error
}

func emptyState(houseID string) State {
	return State{
		HouseID:       houseID,
		Chores:        []model.Chore{},
		Expenses:      []model.Expense{},
		Announcements: []model.Announcement{},
		Members:       []model.Housemate{},
		Matrix:        ledger.Matrix{},
		Loaded:        map[live.Kind]bool{},
		Errors:        map[live.Kind]error{},
	}
}

// ChangeFunc is called after a delivery has been applied. It runs on the
// subscription goroutine and must not call SwitchHouse or Close.
type ChangeFunc func(kind live.Kind, houseID string)

type Option func(*Session)

func WithOnChange(fn ChangeFunc) Option {
	return func(s *Session) { s.onChange = fn }
}

// Session holds one subscription per collection for the viewer's current
// house. Deliveries from a previous house are discarded.
type Session struct {
	viewer   string
	notifier live.Notifier
	src      Sources
	onChange ChangeFunc
	logger   *slog.Logger

	switchMu sync.Mutex // serialises SwitchHouse and Close

	mu     sync.Mutex
	gen    uint64
	state  State
	subs   []*live.Subscription
	closed bool
}

func New(viewer string, n live.Notifier, src Sources, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		viewer:   viewer,
		notifier: n,
		src:      src,
		logger:   logger.With("component", "dashboard", "user_id", viewer),
		state:    emptyState(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SwitchHouse drops every subscription and cached result of the previous
// house and subscribes to houseID. Once it returns, no delivery for the
// previous house is applied. An empty houseID leaves the session idle.
func (s *Session) SwitchHouse(houseID string) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	old := s.subs
	s.subs = nil
	s.state = emptyState(houseID)
	s.mu.Unlock()

	for _, sub := range old {
		sub.Cancel()
	}
	s.logger.Debug("switched house", "house_id", houseID, "generation", gen)
	if houseID == "" {
		return
	}

	subs := []*live.Subscription{
		live.Subscribe(s.notifier, live.KindChores, houseID, s.src.Chores, func(snap live.Snapshot[model.Chore]) {
			s.apply(gen, snap.Kind, snap.HouseID, snap.Err, func(st *State) { st.Chores = snap.Items })
		}),
		live.Subscribe(s.notifier, live.KindExpenses, houseID, s.src.Expenses, func(snap live.Snapshot[model.Expense]) {
			s.apply(gen, snap.Kind, snap.HouseID, snap.Err, func(st *State) {
				st.Expenses = snap.Items
				st.Balance = ledger.ComputeBalance(snap.Items, s.viewer)
				st.Matrix = ledger.PairwiseBalances(snap.Items)
			})
		}),
		live.Subscribe(s.notifier, live.KindAnnouncements, houseID, s.src.Announcements, func(snap live.Snapshot[model.Announcement]) {
			s.apply(gen, snap.Kind, snap.HouseID, snap.Err, func(st *State) { st.Announcements = snap.Items })
		}),
		live.Subscribe(s.notifier, live.KindMembers, houseID, s.src.Members, func(snap live.Snapshot[model.Housemate]) {
			s.apply(gen, snap.Kind, snap.HouseID, snap.Err, func(st *State) { st.Members = snap.Items })
		}),
	}

	s.mu.Lock()
	s.subs = subs
	s.mu.Unlock()
}

func (s *Session) apply(gen uint64, kind live.Kind, houseID string, err error, set func(*State)) {
	s.mu.Lock()
	if gen != s.gen || houseID != s.state.HouseID {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state.Errors[kind] = err
		s.logger.Warn("subscription failed", "kind", kind, "house_id", houseID, "error", err)
	} else {
		set(&s.state)
		delete(s.state.Errors, kind)
	}
	s.state.Loaded[kind] = true
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(kind, houseID)
	}
}

// HouseID returns the house the session is currently bound to.
func (s *Session) HouseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.HouseID
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Chores = slices.Clone(st.Chores)
	st.Expenses = slices.Clone(st.Expenses)
	st.Announcements = slices.Clone(st.Announcements)
	st.Members = slices.Clone(st.Members)
	st.Matrix = maps.Clone(st.Matrix)
	st.Loaded = maps.Clone(st.Loaded)
	st.Errors = maps.Clone(st.Errors)
	return st
}

// Close cancels every subscription. The session cannot be reused.
func (s *Session) Close() {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	old := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range old {
		sub.Cancel()
	}
}
