package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fithub/membership-service/internal/lib/jwt"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	token, err := maker.GenerateToken(42, RoleTrainer)
	require.NoError(t, err)

	otherMaker := jwt.NewJWTMaker("other-secret", time.Hour)
	foreign, err := otherMaker.GenerateToken(42, RoleAdmin)
	require.NoError(t, err)

	var gotID int64
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = r.Context().Value(UserID).(int64)
		gotRole, _ = r.Context().Value(Role).(string)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
		{name: "foreign secret", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotRole = 0, ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			JWTMiddleware(maker, newNoopLogger())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, int64(42), gotID)
				assert.Equal(t, RoleTrainer, gotRole)
			} else {
				assert.Zero(t, gotID)
				assert.Contains(t, w.Body.String(), `"status":"Error"`)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := JWTMiddleware(maker, newNoopLogger())(
		RequireRole(newNoopLogger(), RoleAdmin, RoleTrainer)(next),
	)

	tests := []struct {
		role       string
		wantStatus int
	}{
		{role: RoleAdmin, wantStatus: http.StatusNoContent},
		{role: RoleTrainer, wantStatus: http.StatusNoContent},
		{role: "role_admin", wantStatus: http.StatusNoContent},
		{role: RoleMember, wantStatus: http.StatusForbidden},
		{role: "", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			token, err := maker.GenerateToken(1, tt.role)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/member/1/plan", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
