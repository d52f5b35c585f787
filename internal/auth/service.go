package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vsbilling/vsbilling/internal/shared"
)

// Service verifies access tokens and tracks sign-in and sign-out.
type Service struct {
	verifier *Verifier
	denylist Denylist
	hub      *Hub
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(verifier *Verifier, denylist Denylist, hub *Hub, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		hub = NewHub()
	}
	return &Service{verifier: verifier, denylist: denylist, hub: hub, logger: logger, now: time.Now}
}

// Hub returns the session event hub.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Authenticate verifies raw and rejects revoked tokens. A denylist lookup
// failure is logged and the token is accepted.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Token, error) {
	token, err := s.verifier.Verify(raw)
	if err != nil {
		return nil, err
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, token.Principal.TokenID)
		if err != nil {
			s.logger.Warn("token denylist unavailable", slog.Any("error", err))
		} else if revoked {
			return nil, fmt.Errorf("%w: token revoked", shared.ErrUnauthorized)
		}
	}
	return token, nil
}

// SignIn authenticates raw and publishes EventSignedIn.
func (s *Service) SignIn(ctx context.Context, raw string) (*Session, error) {
	token, err := s.Authenticate(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(ctx, Event{Kind: EventSignedIn, OwnerID: token.Principal.OwnerID, At: s.now()})
	s.logger.Info("signed in", slog.String("owner", token.Principal.OwnerID))
	return &Session{
		OwnerID:   token.Principal.OwnerID,
		Email:     token.Principal.Email,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// SignOut revokes raw until it expires and publishes EventSignedOut.
func (s *Service) SignOut(ctx context.Context, raw string) error {
	token, err := s.Authenticate(ctx, raw)
	if err != nil {
		return err
	}
	if s.denylist != nil {
		if err := s.denylist.Revoke(ctx, token.Principal.TokenID, token.ExpiresAt); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}
	s.hub.Publish(ctx, Event{Kind: EventSignedOut, OwnerID: token.Principal.OwnerID, At: s.now()})
	s.logger.Info("signed out", slog.String("owner", token.Principal.OwnerID))
	return nil
}
