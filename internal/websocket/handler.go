package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/roomshare/internal/auth"
	"github.com/dukerupert/roomshare/internal/dashboard"
	"github.com/dukerupert/roomshare/internal/live"
)

// Options are the collaborators every connection needs.
type Options struct {
	Notifier live.Notifier
	Sources  dashboard.Sources
	Profiles ProfileSource
	Logger   *slog.Logger
	// OriginPatterns lists allowed cross-origin hosts. Empty means same
	// origin only.
	OriginPatterns []string
}

// HandleWebSocket returns an HTTP handler that upgrades authenticated
// connections and streams the caller's dashboard.
func HandleWebSocket(hub *Hub, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			opts.Logger.Warn("websocket accept", "component", "websocket", "error", err)
			return
		}
		defer conn.CloseNow()

		client := newClient(hub, conn, userID, opts)
		client.Run(r.Context())
	}
}
