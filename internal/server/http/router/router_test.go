package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/earnbot/internal/domain/model"
	pkgAuth "github.com/polkiloo/earnbot/internal/pkg/auth"
	"github.com/polkiloo/earnbot/internal/server/http/handlers"
	"github.com/polkiloo/earnbot/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/earnbot/internal/test"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	hasher := pkgAuth.NewBcryptHasher(4)
	hash, err := hasher.Hash("key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	facade := testhelpers.FacadeStub{
		Admins: map[int64]bool{900: true},
		PendingWithdrawalsFn: func(context.Context, int64, int) ([]model.Withdrawal, error) {
			return []model.Withdrawal{{ID: uuid.New(), Amount: 100, Status: model.WithdrawalStatusPending}}, nil
		},
	}
	return Setup(facade, pkgAuth.NewKeyVerifier(hasher, hash), logger)
}

func TestSetupRoutes(t *testing.T) {
	engine := newEngine(t)

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for healthz, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for metrics, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/withdrawals/pending", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/withdrawals/pending", nil)
	req.Header.Set("Authorization", "Bearer key")
	req.Header.Set(middleware.AdminIDHeader, "900")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for pending, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"status":"pending"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodPut, "/api/admin/settings/genlink", strings.NewReader(`{"enabled":false}`))
	req.Header.Set("Authorization", "Bearer key")
	req.Header.Set(middleware.AdminIDHeader, "900")
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for settings, got %d", resp.Code)
	}
}

var _ handlers.ServiceFacade = testhelpers.FacadeStub{}
