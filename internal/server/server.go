package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/roomshare/internal/announcement"
	"github.com/dukerupert/roomshare/internal/chore"
	"github.com/dukerupert/roomshare/internal/dashboard"
	"github.com/dukerupert/roomshare/internal/handler"
	"github.com/dukerupert/roomshare/internal/house"
	"github.com/dukerupert/roomshare/internal/identity"
	"github.com/dukerupert/roomshare/internal/ledger"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/metrics"
	"github.com/dukerupert/roomshare/internal/middleware"
	"github.com/dukerupert/roomshare/internal/store"
	ws "github.com/dukerupert/roomshare/internal/websocket"
)

// Options configures a Server.
type Options struct {
	SessionTTL     time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	OriginPatterns []string
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	wsOpts      ws.Options
	identity    *identity.Provider
	authH       *handler.AuthHandler
	houseH      *handler.HouseHandler
	expenseH    *handler.ExpenseHandler
	choreH      *handler.ChoreHandler
	announceH   *handler.AnnouncementHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, notifier live.Notifier, opts Options, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	houseStore := store.NewHouseStore(db)
	sessionStore := store.NewSessionStore(db)
	expenseStore := store.NewExpenseStore(db)
	choreStore := store.NewChoreStore(db)
	announcementStore := store.NewAnnouncementStore(db)

	provider := identity.NewProvider(userStore, sessionStore, notifier, opts.SessionTTL, logger)
	houses := house.NewService(houseStore, userStore, notifier, logger)
	expenses := ledger.NewService(expenseStore, houseStore, userStore, notifier, logger)
	chores := chore.NewRegister(choreStore, houseStore, userStore, notifier, logger)
	board := announcement.NewBoard(announcementStore, houseStore, userStore, notifier, logger)

	return &Server{
		db:  db,
		hub: ws.NewHub(logger),
		wsOpts: ws.Options{
			Notifier: notifier,
			Sources: dashboard.Sources{
				Chores:        chores.ListChores,
				Expenses:      expenses.ListExpenses,
				Announcements: board.ListAnnouncements,
				Members:       houses.Housemates,
			},
			Profiles:       provider,
			Logger:         logger,
			OriginPatterns: opts.OriginPatterns,
		},
		identity:    provider,
		authH:       handler.NewAuthHandler(provider, logger),
		houseH:      handler.NewHouseHandler(houses, logger),
		expenseH:    handler.NewExpenseHandler(expenses, userStore, logger),
		choreH:      handler.NewChoreHandler(chores, userStore, logger),
		announceH:   handler.NewAnnouncementHandler(board, userStore, logger),
		rateLimiter: middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		logger:      logger,
	}
}

// Identity returns the identity provider for session cleanup.
func (s *Server) Identity() *identity.Provider {
	return s.identity
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the WebSocket hub so connections can be closed on shutdown.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	limited := middleware.RateLimit(s.rateLimiter, middleware.RealIP)
	outerMux.Handle("POST /api/auth/signup", limited(http.HandlerFunc(s.authH.SignUp)))
	outerMux.Handle("POST /api/auth/signin", limited(http.HandlerFunc(s.authH.SignIn)))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", metrics.Handler())

	// Protected routes. Each is wrapped individually so the mux records the
	// full route pattern for request metrics.
	s.registerProtectedRoutes(outerMux, middleware.RequireAuth(s.identity))

	return middleware.RequestLogger(s.logger)(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(outer *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux := protectedMux{outer, requireAuth}

	// Session and profile
	mux.HandleFunc("POST /api/auth/signout", s.authH.SignOut)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me", s.authH.UpdateMe)

	// Houses
	mux.HandleFunc("POST /api/houses", s.houseH.Create)
	mux.HandleFunc("GET /api/houses", s.houseH.List)
	mux.HandleFunc("POST /api/houses/join", s.houseH.Join)
	mux.HandleFunc("POST /api/houses/leave", s.houseH.Leave)
	mux.HandleFunc("GET /api/houses/{id}", s.houseH.Get)
	mux.HandleFunc("PUT /api/houses/{id}/name", s.houseH.UpdateName)
	mux.HandleFunc("GET /api/houses/{id}/housemates", s.houseH.Housemates)
	mux.HandleFunc("GET /api/houses/{id}/members/{userID}/role", s.houseH.MemberRole)

	// Expenses
	mux.HandleFunc("POST /api/expenses", s.expenseH.Create)
	mux.HandleFunc("GET /api/expenses", s.expenseH.List)
	mux.HandleFunc("GET /api/expenses/balance", s.expenseH.Balance)

	// Chores
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("POST /api/chores/{id}/toggle", s.choreH.Toggle)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)

	// Announcements
	mux.HandleFunc("POST /api/announcements", s.announceH.Create)
	mux.HandleFunc("GET /api/announcements", s.announceH.List)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.wsOpts))
}

type protectedMux struct {
	mux  *http.ServeMux
	wrap func(http.Handler) http.Handler
}

func (p protectedMux) HandleFunc(pattern string, h http.HandlerFunc) {
	p.mux.Handle(pattern, p.wrap(h))
}
