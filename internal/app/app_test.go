// README: App wiring test against in-memory SQLite.
package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabbook/internal/config"
	"cabbook/internal/modules/directory"
)

func TestNewServesWithSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.DB.DSN = ":memory:"
	cfg.Auth.Secret = "test-secret"
	cfg.Report.Dir = t.TempDir()
	require.NoError(t, cfg.Validate())

	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	u, err := a.Directory.Register(context.Background(), directory.RegisterCommand{
		Name: "Asha", Email: "asha@example.com", PhoneNumber: "9000000001", PasswordHash: "h",
	})
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  u.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("x-auth-token", token)
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":true,"message":"Bookings fetched successfully","data":[]}`, w.Body.String())
}

func TestOpenStoresUnknownDriver(t *testing.T) {
	_, err := OpenStores(context.Background(), config.DBConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}
