package house

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dukerupert/roomshare/internal/apperr"
)

// maxCodeAttempts bounds how many candidate codes are tried before giving up.
const maxCodeAttempts = 5

// CodeSource produces candidate invite codes.
type CodeSource func() (string, error)

// RandomCode returns a uniformly random six-digit code in [100000, 999999].
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// uniqueCode draws candidates until one is unused by any house. Two
// concurrent creators can still draw the same code; the UNIQUE constraint on
// houses.invite_code makes the second insert fail.
func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.codes()
		if err != nil {
			return "", err
		}
		exists, err := s.houses.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.logger.Debug("invite code collision", "attempt", attempt)
	}
	return "", apperr.ErrInviteCodeGenerationFailed
}
