// Package identity signs users up and in, and resolves session tokens to
// profiles.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/roomshare/internal/apperr"
	"github.com/dukerupert/roomshare/internal/auth"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/dukerupert/roomshare/internal/store"
)

const minPasswordLen = 8

// ErrEmailTaken is returned by SignUp for an address that already has a profile.
var ErrEmailTaken = fmt.Errorf("%w: email already registered", apperr.ErrInvalidInput)

type Provider struct {
	users    *store.UserStore
	sessions *store.SessionStore
	pub      live.Publisher
	ttl      time.Duration
	cost     int
	logger   *slog.Logger
}

func NewProvider(users *store.UserStore, sessions *store.SessionStore, pub live.Publisher, ttl time.Duration, logger *slog.Logger) *Provider {
	return &Provider{
		users:    users,
		sessions: sessions,
		pub:      pub,
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		logger:   logger.With("component", "identity"),
	}
}

// SignUp creates a profile with no house and opens a session for it.
func (p *Provider) SignUp(ctx context.Context, email, fullName, password string) (*model.User, *model.Session, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, apperr.Invalid("invalid email address")
	}
	if fullName == "" {
		return nil, nil, apperr.Invalid("full name is required")
	}
	if len(password) < minPasswordLen {
		return nil, nil, apperr.Invalid("password must be at least %d characters", minPasswordLen)
	}

	existing, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := p.users.Create(ctx, email, fullName, string(hash))
	if err != nil {
		p.logger.Error("create user", "error", err)
		return nil, nil, err
	}

	sess, err := p.sessions.Create(ctx, u.ID, p.ttl)
	if err != nil {
		return nil, nil, err
	}
	p.logger.Info("user signed up", "user_id", u.ID)
	return u, sess, nil
}

// SignIn verifies the credentials and opens a new session. Unknown email
// and wrong password are indistinguishable to the caller.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	id, hash, err := p.users.PasswordHash(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			p.logger.Info("sign in rejected", "user_id", id)
			return nil, apperr.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	sess, err := p.sessions.Create(ctx, id, p.ttl)
	if err != nil {
		return nil, err
	}
	p.logger.Info("user signed in", "user_id", id)
	return sess, nil
}

// Authenticate resolves a session token to an auth context.
func (p *Provider) Authenticate(ctx context.Context, token string) (*auth.AuthContext, error) {
	if token == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	sess, err := p.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	return &auth.AuthContext{UserID: sess.UserID, SessionID: sess.ID, Token: sess.Token}, nil
}

// CurrentProfile returns userID's profile.
func (p *Provider) CurrentProfile(ctx context.Context, userID string) (*model.User, error) {
	u, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	if houseID := u.HouseID(); houseID != "" {
		topic := live.Topic(live.KindMembers, houseID)
		if err := p.pub.Publish(ctx, topic); err != nil {
			p.logger.Warn("publish change", "topic", topic, "error", err)
		}
	}
	return u, nil
}

// RefreshProfile re-reads the profile from the store. Long-lived views call
// it after a membership change to pick up the new current house.
func (p *Provider) RefreshProfile(ctx context.Context, userID string) (*model.User, error) {
	u, err := p.CurrentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("profile refreshed", "user_id", userID, "house_id", u.HouseID())
	return u, nil
}

// UpdateName changes the caller's display name. Housemates of the caller's
// current house see the new name through a members change.
func (p *Provider) UpdateName(ctx context.Context, fullName string) (*model.User, error) {
	userID, err := auth.Caller(ctx)
	if err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperr.Invalid("full name is required")
	}
	u, err := p.users.UpdateName(ctx, userID, fullName)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	return u, nil
}

func (p *Provider) SignOut(ctx context.Context, token string) error {
	if err := p.sessions.DeleteByToken(ctx, token); err != nil {
		return err
	}
	p.logger.Info("user signed out", "user_id", auth.UserID(ctx))
	return nil
}

// CleanupExpired removes expired sessions and reports how many were deleted.
func (p *Provider) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := p.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.Info("expired sessions removed", "count", n)
	}
	return n, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
