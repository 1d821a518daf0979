package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestTokenRoundTrip(t *testing.T) {
	s := NewService("secret")
	res, err := s.IssueGuestToken("  Ada ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.User.DisplayName)
	assert.True(t, strings.HasPrefix(res.User.ID, "user_"))

	user, err := s.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User, *user)
}

func TestGuestTokenRequiresName(t *testing.T) {
	_, err := NewService("secret").IssueGuestToken("   ")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestValidateTokenRejects(t *testing.T) {
	s := NewService("secret")
	res, err := s.IssueGuestToken("Ada")
	require.NoError(t, err)

	_, err = NewService("other").ValidateToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewService("secret")
	later.now = func() time.Time { return time.Now().Add(tokenTTL + time.Hour) }
	_, err = later.ValidateToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	s := NewService("secret")
	res, err := s.IssueGuestToken("Ada")
	require.NoError(t, err)

	h := s.AuthMiddleware(http.HandlerFunc(NewHandler(s).Me))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Token "+res.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, res.User, got)
}

func TestGuestHandler(t *testing.T) {
	h := NewHandler(NewService("secret"))

	rec := httptest.NewRecorder()
	h.Guest(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", strings.NewReader(`{"displayName":"Ada"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var res AuthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)

	rec = httptest.NewRecorder()
	h.Guest(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Guest(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
