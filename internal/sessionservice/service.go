// Package sessionservice manages business logic layer of admin sessions.
package sessionservice

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/rs/zerolog"
)

// Service facilitates session service layer logic.
type Service struct {
	passwordHash string
	tokenMaker   tokenpkg.Maker
	duration     time.Duration
}

// New returns session service. An empty password hash disables logins.
func New(passwordHash string, tm tokenpkg.Maker, duration time.Duration) *Service {
	return &Service{
		passwordHash: passwordHash,
		tokenMaker:   tm,
		duration:     duration,
	}
}

// Create checks the admin password and returns an access token.
func (s *Service) Create(ctx context.Context, password string) (string, time.Time, error) {
	l := zerolog.Ctx(ctx)

	if s.passwordHash == "" {
		l.Warn().Msg("login attempted without ADMIN_PASSWORD_HASH")
		return "", time.Time{}, domain.ErrWrongPassword
	}

	if err := passpkg.Check(password, s.passwordHash); err != nil {
		l.Info().Err(err).Send()
		return "", time.Time{}, domain.ErrWrongPassword
	}

	token, payload, err := s.tokenMaker.CreateToken(domain.AdminUsername, s.duration)
	if err != nil {
		l.Error().Err(err).Send()
		return "", time.Time{}, errorspkg.ErrInternal
	}

	return token, payload.ExpiredAt, nil
}
