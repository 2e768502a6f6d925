package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-notification-hub/internal/app"
	"github.com/go-notification-hub/internal/channel"
	"github.com/go-notification-hub/internal/config"
	"github.com/go-notification-hub/internal/domain"
	jwtinfra "github.com/go-notification-hub/internal/infrastructure/jwt"
	"github.com/go-notification-hub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         time.Hour,
	})
	require.NoError(t, err)
	return p
}

type testServer struct {
	handler http.Handler
	jwt     *jwtinfra.Provider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		AllowedOrigins:  []string{"*"},
		DispatchTimeout: time.Second,
		DispatchWorkers: 2,
		StrictTemplates: true,
	}
	registry := channel.NewRegistry().
		Register(domain.ChannelEmail, channel.SenderFunc(func(context.Context, domain.Notification) domain.AttemptResult {
			return domain.Succeeded()
		})).
		Register(domain.ChannelSlack, channel.SenderFunc(func(context.Context, domain.Notification) domain.AttemptResult {
			return domain.Failed("slack webhook returned 500")
		}))
	a := app.Assemble(cfg, store.Memory(), registry, nil)
	p := newTestJWTProvider(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &testServer{handler: NewRouter(ctx, a, p), jwt: p}
}

func (s *testServer) do(t *testing.T, method, target, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if role != "" {
		token, err := s.jwt.Sign("tester", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestRouter_HealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/health-check/ping", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/health-check/ready", "", nil).Code)
}

func TestRouter_RequiresAuth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/stats", "", nil).Code)
}

func TestRouter_AdminRoutes(t *testing.T) {
	s := newTestServer(t)
	tmpl := domain.TemplateInput{Channel: "email", Subject: "Hi {{name}}", Body: "Welcome, {{name}}!"}

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/v1/templates/welcome", domain.RoleService, tmpl).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/v1/templates/welcome", domain.RoleAdmin, tmpl).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/v1/retry", domain.RoleService, nil).Code)
}

func TestRouter_SendReadStatsFlow(t *testing.T) {
	s := newTestServer(t)
	tmpl := domain.TemplateInput{Channel: "email", Subject: "Hi {{name}}", Body: "Welcome, {{name}}!"}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/v1/templates/welcome", domain.RoleAdmin, tmpl).Code)

	rr := s.do(t, http.MethodPost, "/v1/templates/welcome/render", domain.RoleService, domain.RenderRequest{Variables: map[string]any{}})
	require.Equal(t, http.StatusOK, rr.Code)
	var rendered domain.Rendered
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rendered))
	assert.Equal(t, "Hi {{name}}", rendered.Subject)
	assert.Equal(t, []string{"name"}, rendered.Unresolved)

	rr = s.do(t, http.MethodPost, "/v1/notifications", domain.RoleService, domain.CreateNotificationRequest{
		Recipient: "alice@example.com",
		Channel:   "email",
		Template:  &domain.TemplateRef{Name: "welcome", Variables: map[string]any{"name": "Alice"}},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var sent domain.DispatchResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sent))
	assert.Equal(t, domain.StatusSent, sent.Status)

	rr = s.do(t, http.MethodPost, "/v1/notifications", domain.RoleService, domain.CreateNotificationRequest{
		Recipient: "#ops", Channel: "slack", Body: "deploy done",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var failed domain.DispatchResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&failed))
	assert.Equal(t, domain.StatusFailed, failed.Status)

	rr = s.do(t, http.MethodGet, "/v1/notifications?recipient=alice@example.com", domain.RoleService, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Hi Alice")

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPut, "/v1/notifications/"+failed.NotificationID+"/read", domain.RoleService, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/v1/notifications/"+sent.NotificationID+"/read", domain.RoleService, nil).Code)

	rr = s.do(t, http.MethodGet, "/v1/notifications/"+failed.NotificationID+"/deliveries", domain.RoleService, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "slack webhook returned 500")

	rr = s.do(t, http.MethodGet, "/v1/stats", domain.RoleService, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var st domain.Stats
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&st))
	assert.Equal(t, 2, st.TotalAttempts)
	assert.Equal(t, 0.5, st.SuccessRate)

	rr = s.do(t, http.MethodGet, "/v1/stats?channel=slack", domain.RoleService, nil)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&st))
	assert.Equal(t, 1, st.TotalAttempts)
	assert.Equal(t, 0.0, st.SuccessRate)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/stats?channel=fax", domain.RoleService, nil).Code)

	rr = s.do(t, http.MethodPost, "/v1/retry", domain.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodPost, "/v1/deliveries/archive", domain.RoleAdmin, nil).Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/v1/notifications", domain.RoleService, domain.CreateNotificationRequest{Recipient: "a@example.com", Channel: "email"})

	rr := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "notification_hub_delivery_attempts_total")
}

func TestRouter_RenderKeepsIntegerDigits(t *testing.T) {
	s := newTestServer(t)
	tmpl := domain.TemplateInput{Channel: "email", Subject: "Order {{order.id}}", Body: "Total {{order.total}}"}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/v1/templates/order", domain.RoleAdmin, tmpl).Code)

	req := map[string]any{"variables": map[string]any{"order": map[string]any{"id": 1234567, "total": 2500000}}}
	rr := s.do(t, http.MethodPost, "/v1/templates/order/render", domain.RoleService, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var rendered domain.Rendered
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rendered))
	assert.Equal(t, "Order 1234567", rendered.Subject)
	assert.Equal(t, "Total 2500000", rendered.Body)
}

func TestRouter_BatchSendsValidItemsAroundInvalidOne(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodPost, "/v1/notifications/batch", domain.RoleService, map[string]any{
		"notifications": []domain.CreateNotificationRequest{
			{Recipient: "a@example.com", Channel: "email", Body: "one"},
			{Channel: "email", Body: "two"},
			{Recipient: "c@example.com", Channel: "email", Body: "three"},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/stats", domain.RoleService, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var st domain.Stats
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&st))
	assert.Equal(t, 2, st.TotalAttempts)
	assert.Equal(t, 2, st.TotalNotifications)
}
