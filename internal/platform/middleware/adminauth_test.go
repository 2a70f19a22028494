package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSigningKey = "test-signing-key"

func signAdminToken(t *testing.T, claims AdminClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSigningKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func adminEcho(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := RequireAdmin(testSigningKey, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAdminID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestRequireAdminAcceptsValidToken(t *testing.T) {
	h, seen := adminEcho(t)

	token := signAdminToken(t, AdminClaims{
		AdminID: "admin-42",
		Role:    "support",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *seen != "admin-42" {
		t.Fatalf("expected admin id in context, got %q", *seen)
	}
}

func TestRequireAdminRejectsMissingHeader(t *testing.T) {
	h, _ := adminEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/audit-logs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsExpiredToken(t *testing.T) {
	h, _ := adminEcho(t)

	token := signAdminToken(t, AdminClaims{
		AdminID: "admin-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsTokenWithoutAdminID(t *testing.T) {
	h, _ := adminEcho(t)

	token := signAdminToken(t, AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token without admin_id, got %d", rec.Code)
	}
}
