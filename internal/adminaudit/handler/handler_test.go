package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"vigil/internal/adminaudit/models"
	"vigil/internal/adminaudit/service"
	"vigil/internal/adminaudit/store"
	"vigil/internal/platform/middleware"
)

const signingKey = "test-signing-key"

type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func (s *HandlerSuite) SetupTest() {
	svc, err := service.New(store.NewInMemory())
	s.Require().NoError(err)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Use(middleware.RequireAdmin(signingKey, logger))
	h.Register(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func adminToken(t interface{ FailNow() }, adminID string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.AdminClaims{
		AdminID: adminID,
		Role:    "support",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(signingKey))
	if err != nil {
		t.FailNow()
	}
	return signed
}

func (s *HandlerSuite) do(method, target, adminID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken(s.T(), adminID))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// TestAdminTokenRequired verifies middleware wiring - audit endpoints reject
// requests without a valid admin token.
func (s *HandlerSuite) TestAdminTokenRequired() {
	req := httptest.NewRequest(http.MethodGet, "/admin/audit-logs", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code, "expected 401 when admin token missing")
}

// TestLogActionAttributesTokenIdentity verifies the stored record carries the
// admin id from the verified token, not anything the body could claim.
func (s *HandlerSuite) TestLogActionAttributesTokenIdentity() {
	rec := s.do(http.MethodPost, "/admin/audit-logs", "admin-42", LogActionRequest{
		Action:     "SuspendStore",
		EntityType: "Store",
		EntityID:   "store-9",
		Success:    true,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created models.AuditLog
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("admin-42", created.AdminUserID)
	s.Equal("SuspendStore", created.Action)
	s.NotEqual("", created.ID.String())
}

func (s *HandlerSuite) TestQueryReturnsCreatedLogs() {
	for i := 0; i < 3; i++ {
		rec := s.do(http.MethodPost, "/admin/audit-logs", "admin-1", LogActionRequest{
			Action:     "SuspendStore",
			EntityType: "Store",
			EntityID:   "store-9",
			Success:    true,
		})
		s.Require().Equal(http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodGet, "/admin/audit-logs?admin_user_id=admin-1", "admin-1", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Count int `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(3, resp.Count)
}

func (s *HandlerSuite) TestSensitiveAccessFixedConstants() {
	rec := s.do(http.MethodPost, "/admin/sensitive-access/kyc-document", "admin-7", SensitiveAccessRequest{
		EntityID: "doc-123",
		Success:  true,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created models.AuditLog
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal(models.ActionViewKYCDocument, created.Action)
	s.Equal(models.EntityKYCDocument, created.EntityType)
	s.Contains(created.Details, "doc-123")
}

func (s *HandlerSuite) TestSensitiveAccessUnknownCategory() {
	rec := s.do(http.MethodPost, "/admin/sensitive-access/tax-records", "admin-7", SensitiveAccessRequest{
		EntityID: "doc-123",
		Success:  true,
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestGetByResourceRequiresBothParts() {
	rec := s.do(http.MethodGet, "/admin/audit-logs/resource/Store/store-9", "admin-1", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestPurgeRejectsNonPositiveRetention() {
	rec := s.do(http.MethodPost, "/admin/audit-logs/purge", "admin-1", PurgeRequest{RetentionDays: 0})
	s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
}

func (s *HandlerSuite) TestQueryRejectsBadTimestamp() {
	rec := s.do(http.MethodGet, "/admin/audit-logs?start=yesterday", "admin-1", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}
