package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/user"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type stubFinder struct {
	users map[uuid.UUID]*user.User
}

func (f *stubFinder) FindUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func signToken(t *testing.T, u *user.User, ttl time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := user.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name:  u.Name,
		Email: u.Email,
		Roles: u.Roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func TestJWTMiddleware(t *testing.T) {
	alice := &user.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Roles: []string{user.RoleUser}}
	finder := &stubFinder{users: map[uuid.UUID]*user.User{alice.ID: alice}}

	var gotUser *user.User
	handler := JWTMiddleware(testSecret, finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	call := func(authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		w := call("Bearer " + signToken(t, alice, time.Hour))
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, alice.ID, gotUser.ID)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("Bearer not.a.token").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+signToken(t, alice, -time.Hour)).Code)
	})

	t.Run("subject no longer exists", func(t *testing.T) {
		ghost := &user.User{ID: uuid.New(), Roles: []string{user.RoleUser}}
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+signToken(t, ghost, time.Hour)).Code)
	})
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(user.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(u *user.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		if u != nil {
			req = req.WithContext(ContextWithUser(req.Context(), u))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	admin := &user.User{ID: uuid.New(), Roles: []string{user.RoleUser, user.RoleAdmin}}
	plain := &user.User{ID: uuid.New(), Roles: []string{user.RoleUser}}

	assert.Equal(t, http.StatusOK, call(admin).Code)
	assert.Equal(t, http.StatusForbidden, call(plain).Code)
	assert.Equal(t, http.StatusForbidden, call(nil).Code)
}
