package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vsbilling/vsbilling/internal/shared"
)

// VerifierConfig configures access token verification.
type VerifierConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Verifier checks HS256 access tokens from the identity provider.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// Token is a verified access token.
type Token struct {
	Principal shared.Principal
	ExpiresAt time.Time
}

func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify parses raw and returns the principal it identifies.
func (v *Verifier) Verify(raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: missing token", shared.ErrUnauthorized)
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", shared.ErrUnauthorized)
	}

	tokenID := claims.ID
	if tokenID == "" {
		sum := sha256.Sum256([]byte(raw))
		tokenID = hex.EncodeToString(sum[:])
	}
	return &Token{
		Principal: shared.Principal{
			OwnerID: claims.Subject,
			Email:   claims.Email,
			TokenID: tokenID,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
