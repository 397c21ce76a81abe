package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3025972301/scratch-viwe/internal/auth"
	"github.com/3025972301/scratch-viwe/internal/metrics"
	"github.com/3025972301/scratch-viwe/internal/testutil"
)

const testSecret = "test-secret-key-for-testing"

func setupAuth(t *testing.T) (*auth.Service, chi.Router) {
	t.Helper()

	database := testutil.NewDB(t, (*auth.Admin)(nil))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := auth.NewRepository(database)
	service := auth.NewService(repo, testSecret, 24*time.Hour)
	require.NoError(t, service.EnsureDefaultAdmin(context.Background()))

	handler := auth.NewHandler(service, logger, metrics.NewMock())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return service, router
}

func postJSON(t *testing.T, router chi.Router, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	_, router := setupAuth(t)

	t.Run("Success", func(t *testing.T) {
		w := postJSON(t, router, "/auth/login", map[string]string{
			"username": "admin",
			"password": "admin123",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp auth.LoginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin", resp.User.Username)
		assert.Equal(t, auth.RoleAdmin, resp.User.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		w := postJSON(t, router, "/auth/login", map[string]string{
			"username": "admin",
			"password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		w := postJSON(t, router, "/auth/login", map[string]string{
			"username": "ghost",
			"password": "admin123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		w := postJSON(t, router, "/auth/login", map[string]string{
			"username": "admin",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVerify(t *testing.T) {
	_, router := setupAuth(t)

	login := postJSON(t, router, "/auth/login", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var loginResp auth.LoginResponse
	require.NoError(t, json.NewDecoder(login.Body).Decode(&loginResp))

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
		req.Header.Set("Authorization", "Bearer "+loginResp.Token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp auth.VerifyResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Valid)
		require.NotNil(t, resp.User)
		assert.Equal(t, "admin", resp.User.Username)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp auth.VerifyResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.Valid)
	})

	t.Run("RotatedSecret", func(t *testing.T) {
		// A token signed under a different secret must be rejected
		otherToken, err := auth.GenerateToken("other-secret", &auth.Admin{ID: 1, Username: "admin"}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMiddleware(t *testing.T) {
	service, _ := setupAuth(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	router.With(auth.Middleware(service, logger)).Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("NoHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ValidToken", func(t *testing.T) {
		token, err := auth.GenerateToken(testSecret, &auth.Admin{ID: 1, Username: "admin"}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
