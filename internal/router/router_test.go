package router_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"receiptly/internal/domain"
	"receiptly/internal/handler"
	"receiptly/internal/router"
	"receiptly/internal/service"
	"receiptly/internal/workflow"
	"receiptly/mocks"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func setup(db handler.Pinger) (*gin.Engine, *mocks.MockAuthService, *mocks.MockReceiptService) {
	gin.SetMode(gin.TestMode)
	auth := new(mocks.MockAuthService)
	svc := new(mocks.MockReceiptService)
	engine := workflow.NewEngine(workflow.EngineConfig{}, nil)

	health := handler.NewHealthHandler(map[string]handler.Probe{
		"database": handler.PingProbe(db),
		"workflow": engine.Ready,
	})
	r := router.Setup(router.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AuthService:    auth,
		Health:         health,
		Receipts:       handler.NewReceiptHandler(svc, nil),
		Workflow:       handler.NewWorkflowHandler(engine, "", nil),
	})
	return r, auth, svc
}

func TestHealth(t *testing.T) {
	r, _, _ := setup(pinger{})

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestReadiness_DatabaseDown(t *testing.T) {
	r, _, _ := setup(pinger{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"database":"unavailable","workflow":"ok"}}`, w.Body.String())
}

func TestReceipts_RequireToken(t *testing.T) {
	r, _, svc := setup(pinger{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/receipts", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestReceipts_WithToken(t *testing.T) {
	r, auth, svc := setup(pinger{})
	claims := &service.Claims{Email: "a@example.com"}
	claims.Subject = "user_123"
	auth.On("ValidateToken", "good-token").Return(claims, nil)
	svc.On("List", mock.Anything, "user_123", domain.DefaultReceiptSort).Return([]domain.Receipt{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/receipts", http.NoBody)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestWorkflow_IsPublic(t *testing.T) {
	r, _, _ := setup(pinger{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/workflow", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
