package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsbilling/vsbilling/internal/auth"
	"github.com/vsbilling/vsbilling/internal/shared"
	_ "github.com/vsbilling/vsbilling/testing"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "https://idp.test/auth/v1"
	testAudience = "authenticated"
)

func signToken(t *testing.T, secret string, mutate func(*auth.Claims)) string {
	t.Helper()
	claims := &auth.Claims{
		Email: "owner@vishal.test",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner-1",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ID:        "token-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(claims)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

type fixture struct {
	service *auth.Service
	redis   *miniredis.Miniredis
	events  []auth.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: testSecret, Issuer: testIssuer, Audience: testAudience})
	require.NoError(t, err)

	f := &fixture{redis: mr}
	hub := auth.NewHub()
	unsubscribe := hub.Subscribe(func(ctx context.Context, evt auth.Event) {
		f.events = append(f.events, evt)
	})
	t.Cleanup(unsubscribe)
	f.service = auth.NewService(verifier, auth.NewRedisDenylist(client), hub, nil)
	return f
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := auth.NewVerifier(auth.VerifierConfig{})
	assert.Error(t, err)
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: testSecret, Issuer: testIssuer, Audience: testAudience})
	require.NoError(t, err)

	token, err := verifier.Verify(signToken(t, testSecret, nil))
	require.NoError(t, err)
	assert.Equal(t, "owner-1", token.Principal.OwnerID)
	assert.Equal(t, "owner@vishal.test", token.Principal.Email)
	assert.Equal(t, "token-1", token.Principal.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: testSecret, Issuer: testIssuer, Audience: testAudience})
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "garbage", raw: "not-a-jwt"},
		{name: "wrong secret", raw: signToken(t, "other-secret", nil)},
		{name: "expired", raw: signToken(t, testSecret, func(c *auth.Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		})},
		{name: "no expiry", raw: signToken(t, testSecret, func(c *auth.Claims) { c.ExpiresAt = nil })},
		{name: "wrong issuer", raw: signToken(t, testSecret, func(c *auth.Claims) { c.Issuer = "someone-else" })},
		{name: "wrong audience", raw: signToken(t, testSecret, func(c *auth.Claims) { c.Audience = jwt.ClaimStrings{"anon"} })},
		{name: "no subject", raw: signToken(t, testSecret, func(c *auth.Claims) { c.Subject = "" })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.raw)
			assert.ErrorIs(t, err, shared.ErrUnauthorized)
		})
	}
}

func TestVerifyDerivesTokenIDWhenMissing(t *testing.T) {
	verifier, err := auth.NewVerifier(auth.VerifierConfig{Secret: testSecret})
	require.NoError(t, err)

	token, err := verifier.Verify(signToken(t, testSecret, func(c *auth.Claims) { c.ID = "" }))
	require.NoError(t, err)
	assert.Len(t, token.Principal.TokenID, 64)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", auth.BearerToken("Bearer abc"))
	assert.Equal(t, "abc", auth.BearerToken("bearer  abc "))
	assert.Empty(t, auth.BearerToken("Basic abc"))
	assert.Empty(t, auth.BearerToken(""))
}

func TestSignInPublishesEvent(t *testing.T) {
	f := newFixture(t)

	session, err := f.service.SignIn(context.Background(), signToken(t, testSecret, nil))
	require.NoError(t, err)
	assert.Equal(t, "owner-1", session.OwnerID)

	require.Len(t, f.events, 1)
	assert.Equal(t, auth.EventSignedIn, f.events[0].Kind)
	assert.Equal(t, "owner-1", f.events[0].OwnerID)
}

func TestSignOutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	raw := signToken(t, testSecret, nil)

	require.NoError(t, f.service.SignOut(ctx, raw))
	require.Len(t, f.events, 1)
	assert.Equal(t, auth.EventSignedOut, f.events[0].Kind)

	assert.True(t, f.redis.Exists("billing:auth:revoked:token-1"))
	ttl := f.redis.TTL("billing:auth:revoked:token-1")
	assert.Greater(t, ttl, 55*time.Minute)

	_, err := f.service.Authenticate(ctx, raw)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	f.redis.FastForward(2 * time.Hour)
	assert.False(t, f.redis.Exists("billing:auth:revoked:token-1"))
}

func TestAuthenticateToleratesDenylistOutage(t *testing.T) {
	f := newFixture(t)
	f.redis.Close()

	token, err := f.service.Authenticate(context.Background(), signToken(t, testSecret, nil))
	require.NoError(t, err)
	assert.Equal(t, "owner-1", token.Principal.OwnerID)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := auth.NewHub()
	var calls int
	unsubscribe := hub.Subscribe(func(context.Context, auth.Event) { calls++ })

	hub.Publish(context.Background(), auth.Event{Kind: auth.EventSignedIn})
	unsubscribe()
	unsubscribe()
	hub.Publish(context.Background(), auth.Event{Kind: auth.EventSignedIn})

	assert.Equal(t, 1, calls)
}

func TestRequireUserMiddleware(t *testing.T) {
	f := newFixture(t)
	r := chi.NewRouter()
	r.With(auth.RequireUser(f.service)).Get("/api/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shared.OwnerFromContext(r.Context())))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, nil))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner-1", rec.Body.String())
}

func TestSessionHandler(t *testing.T) {
	f := newFixture(t)
	r := chi.NewRouter()
	r.Route("/auth", auth.NewHandler(nil, f.service).MountRoutes)
	raw := signToken(t, testSecret, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var session auth.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.Equal(t, "owner-1", session.OwnerID)

	req = httptest.NewRequest(http.MethodDelete, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
