package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dukerupert/roomshare/internal/auth"
	"github.com/dukerupert/roomshare/internal/dashboard"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/model"
)

type fakeProfiles struct {
	mu      sync.Mutex
	houseID string
}

func (f *fakeProfiles) set(houseID string) {
	f.mu.Lock()
	f.houseID = houseID
	f.mu.Unlock()
}

func (f *fakeProfiles) RefreshProfile(_ context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{ID: userID}
	if f.houseID != "" {
		id := f.houseID
		u.CurrentHouseID = &id
	}
	return u, nil
}

func testSources() dashboard.Sources {
	return dashboard.Sources{
		Chores: func(_ context.Context, houseID string) ([]model.Chore, error) {
			return []model.Chore{{ID: "chore-" + houseID, HouseID: houseID}}, nil
		},
		Expenses: func(_ context.Context, houseID string) ([]model.Expense, error) {
			return []model.Expense{{ID: "e-" + houseID, HouseID: houseID, Amount: 20, PaidBy: "u1", SplitWith: []string{"u2"}}}, nil
		},
		Announcements: func(context.Context, string) ([]model.Announcement, error) {
			return nil, nil
		},
		Members: func(context.Context, string) ([]model.Housemate, error) {
			return nil, nil
		},
	}
}

type frame struct {
	Type    string   `json:"type"`
	Entity  string   `json:"entity"`
	HouseID string   `json:"house_id"`
	Items   []any    `json:"items"`
	Balance *float64 `json:"balance"`
	Error   string   `json:"error"`
}

func startServer(t *testing.T, profiles *fakeProfiles) (*ws.Conn, *live.Hub, *Hub) {
	t.Helper()
	notifier := live.NewHub(slog.Default())
	hub := NewHub(slog.Default())
	handler := HandleWebSocket(hub, Options{
		Notifier: notifier,
		Sources:  testSources(),
		Profiles: profiles,
		Logger:   slog.Default(),
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r.WithContext(auth.WithUser(r.Context(), "u1")))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, srv.URL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(ws.StatusNormalClosure, "") })
	return conn, notifier, hub
}

// readUntil reads frames until house_changed for houseID has been seen and
// a snapshot has arrived for every collection of that house.
func readUntil(t *testing.T, conn *ws.Conn, houseID string) map[string]frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seenChange := false
	snaps := map[string]frame{}
	for !seenChange || len(snaps) < len(live.Kinds) {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		switch {
		case f.Type == TypeHouseChanged && f.HouseID == houseID:
			seenChange = true
			snaps = map[string]frame{}
		case f.Type == TypeSnapshot && seenChange && f.HouseID == houseID:
			snaps[f.Entity] = f
		}
	}
	return snaps
}

func TestClientStreamsDashboard(t *testing.T) {
	profiles := &fakeProfiles{houseID: "h1"}
	conn, _, hub := startServer(t, profiles)

	snaps := readUntil(t, conn, "h1")

	if len(snaps["chores"].Items) != 1 {
		t.Errorf("chores items = %v, want 1", snaps["chores"].Items)
	}
	exp := snaps["expenses"]
	if exp.Balance == nil || *exp.Balance != 10 {
		t.Errorf("balance = %v, want 10", exp.Balance)
	}
	if snaps["announcements"].Items == nil {
		t.Error("announcements items should be an empty array, not null")
	}
	if got := hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount = %d, want 1", got)
	}
}

func TestClientFollowsProfileChange(t *testing.T) {
	profiles := &fakeProfiles{houseID: "h1"}
	conn, notifier, _ := startServer(t, profiles)
	readUntil(t, conn, "h1")

	profiles.set("h2")
	notifier.Fire(live.ProfileTopic("u1"))

	snaps := readUntil(t, conn, "h2")
	if items := snaps["chores"].Items; len(items) != 1 {
		t.Fatalf("chores items = %v", items)
	}
	chore := snaps["chores"].Items[0].(map[string]any)
	if chore["id"] != "chore-h2" {
		t.Errorf("chore id = %v, want chore-h2", chore["id"])
	}
}

func TestClientRefreshToNoHouse(t *testing.T) {
	profiles := &fakeProfiles{houseID: "h1"}
	conn, _, _ := startServer(t, profiles)
	readUntil(t, conn, "h1")

	profiles.set("")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, map[string]string{"type": "refresh"}); err != nil {
		t.Fatalf("write refresh: %v", err)
	}

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if f.Type == TypeHouseChanged && f.HouseID == "" {
			return
		}
	}
}

func TestHandleWebSocketRequiresAuth(t *testing.T) {
	handler := HandleWebSocket(NewHub(slog.Default()), Options{Logger: slog.Default()})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
