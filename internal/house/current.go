package house

import (
	"context"

	"github.com/dukerupert/roomshare/internal/apperr"
	"github.com/dukerupert/roomshare/internal/auth"
	"github.com/dukerupert/roomshare/internal/model"
	"github.com/dukerupert/roomshare/internal/store"
)

// CurrentHouse resolves the caller and the house its profile points at.
func CurrentHouse(ctx context.Context, users *store.UserStore) (userID, houseID string, err error) {
	userID, err = auth.Caller(ctx)
	if err != nil {
		return "", "", err
	}
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if u == nil {
		return "", "", apperr.ErrNotAuthenticated
	}
	if u.HouseID() == "" {
		return "", "", apperr.ErrNoActiveHouse
	}
	return userID, u.HouseID(), nil
}

// RequireMember reports an invalid-input error when userID has no membership
// row in houseID.
func RequireMember(ctx context.Context, houses *store.HouseStore, houseID, userID string) error {
	m, err := houses.GetMember(ctx, houseID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return apperr.Invalid("user %s is not a member of this house", userID)
	}
	return nil
}

// RequireAdmin reports ErrForbidden unless userID holds the admin role in
// houseID.
func RequireAdmin(ctx context.Context, houses *store.HouseStore, houseID, userID string) error {
	m, err := houses.GetMember(ctx, houseID, userID)
	if err != nil {
		return err
	}
	if m == nil || m.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}
	return nil
}
