package auth

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestResolveStaticTokens(t *testing.T) {
	r := NewResolver("", []string{"TEST123", " EARLYBIRD "})

	tier, err := r.Resolve("TEST123")
	require.NoError(t, err)
	assert.Equal(t, TierPremium, tier)

	tier, err = r.Resolve("EARLYBIRD")
	require.NoError(t, err)
	assert.Equal(t, TierPremium, tier)

	tier, err = r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, TierFree, tier)

	_, err = r.Resolve("nope")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveJWT(t *testing.T) {
	r := NewResolver(secret, nil)

	premium, err := r.Sign(TierPremium, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	require.NoError(t, err)
	tier, err := r.Resolve(premium)
	require.NoError(t, err)
	assert.Equal(t, TierPremium, tier)

	free, err := r.Sign(TierFree, jwt.RegisteredClaims{})
	require.NoError(t, err)
	tier, err = r.Resolve(free)
	require.NoError(t, err)
	assert.Equal(t, TierFree, tier)

	t.Run("expired", func(t *testing.T) {
		tok, err := r.Sign(TierPremium, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))})
		require.NoError(t, err)
		_, err = r.Resolve(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewResolver("other", nil)
		tok, err := other.Sign(TierPremium, jwt.RegisteredClaims{})
		require.NoError(t, err)
		_, err = r.Resolve(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown tier", func(t *testing.T) {
		tok, err := r.Sign(Tier("gold"), jwt.RegisteredClaims{})
		require.NoError(t, err)
		_, err = r.Resolve(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func tierEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(TierFromContext(r.Context())))
	})
}

func TestMiddleware(t *testing.T) {
	h := NewResolver(secret, []string{"TEST123"}).Middleware(tierEcho())

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "free", rec.Body.String())
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer TEST123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "premium", rec.Body.String())
	})

	t.Run("multipart field", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("token", "TEST123"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "premium", rec.Body.String())
	})

	t.Run("unknown form token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("token=WRONG"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "free", rec.Body.String())
	})

	t.Run("invalid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
	})
}
