package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/roomshare/internal/dashboard"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/model"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// ProfileSource re-reads a user's profile.
type ProfileSource interface {
	RefreshProfile(ctx context.Context, userID string) (*model.User, error)
}

// Client streams one viewer's dashboard over a WebSocket connection.
// Deliveries are coalesced: while a write is in progress further changes
// only mark their collection dirty, and the next flush sends the latest
// state once per collection.
type Client struct {
	hub      *Hub
	conn     *ws.Conn
	userID   string
	notifier live.Notifier
	profiles ProfileSource
	session  *dashboard.Session
	logger   *slog.Logger

	dirty   chan struct{}
	refresh chan struct{}
	synced  bool // touched only by the write loop

	mu           sync.Mutex
	pending      map[live.Kind]bool
	houseChanged bool
}

func newClient(hub *Hub, conn *ws.Conn, userID string, opts Options) *Client {
	c := &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		notifier: opts.Notifier,
		profiles: opts.Profiles,
		logger:   opts.Logger.With("component", "websocket", "user_id", userID),
		dirty:    make(chan struct{}, 1),
		refresh:  make(chan struct{}, 1),
		pending:  make(map[live.Kind]bool),
	}
	c.session = dashboard.New(userID, opts.Notifier, opts.Sources, opts.Logger, dashboard.WithOnChange(c.markDirty))
	return c
}

// Run registers the client, starts the read pump, and runs the write loop.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)
	defer c.session.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	profile, stop := c.notifier.Subscribe(live.ProfileTopic(c.userID))
	defer stop()

	c.syncHouse(ctx)

	go func() {
		c.readPump(ctx)
		cancel()
	}()
	c.writePump(ctx, profile)
}

func (c *Client) markDirty(kind live.Kind, _ string) {
	c.mu.Lock()
	c.pending[kind] = true
	c.mu.Unlock()
	signal(c.dirty)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// syncHouse re-reads the profile and rebinds the session when the current
// house has moved.
func (c *Client) syncHouse(ctx context.Context) {
	u, err := c.profiles.RefreshProfile(ctx, c.userID)
	if err != nil {
		c.logger.Warn("refresh profile", "error", err)
		return
	}
	if c.synced && u.HouseID() == c.session.HouseID() {
		return
	}
	c.synced = true

	c.mu.Lock()
	c.houseChanged = true
	clear(c.pending)
	c.mu.Unlock()

	c.session.SwitchHouse(u.HouseID())
	signal(c.dirty)
}

// readPump handles refresh requests. It returns on error (connection
// close), which triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("ignoring malformed frame", "error", err)
			continue
		}
		if msg.Type == "refresh" {
			signal(c.refresh)
		}
	}
}

// writePump flushes state changes and sends periodic pings to detect stale
// connections.
func (c *Client) writePump(ctx context.Context, profile <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.dirty:
			if err := c.flush(ctx); err != nil {
				return
			}
		case _, ok := <-profile:
			if !ok {
				return
			}
			c.syncHouse(ctx)
		case <-c.refresh:
			c.syncHouse(ctx)
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// frames turns the pending changes into messages and clears them.
func (c *Client) frames() []Message {
	c.mu.Lock()
	houseChanged := c.houseChanged
	pending := c.pending
	c.houseChanged = false
	c.pending = make(map[live.Kind]bool)
	c.mu.Unlock()

	st := c.session.State()
	var out []Message
	if houseChanged {
		out = append(out, Message{Type: TypeHouseChanged, HouseID: st.HouseID})
	}
	for _, kind := range live.Kinds {
		if !pending[kind] || !st.Loaded[kind] {
			continue
		}
		if err := st.Errors[kind]; err != nil {
			out = append(out, Message{Type: TypeError, Entity: kind, HouseID: st.HouseID, Error: err.Error()})
			continue
		}
		msg := Message{Type: TypeSnapshot, Entity: kind, HouseID: st.HouseID}
		switch kind {
		case live.KindChores:
			msg.Items = st.Chores
		case live.KindExpenses:
			msg.Items = st.Expenses
			balance := st.Balance
			msg.Balance = &balance
		case live.KindAnnouncements:
			msg.Items = st.Announcements
		case live.KindMembers:
			msg.Items = st.Members
		}
		out = append(out, msg)
	}
	return out
}

func (c *Client) flush(ctx context.Context) error {
	for _, msg := range c.frames() {
		data, err := json.Marshal(msg)
		if err != nil {
			c.logger.Error("marshal frame", "type", msg.Type, "error", err)
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = c.conn.Write(wctx, ws.MessageText, data)
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}
