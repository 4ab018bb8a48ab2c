package http

import (
	"bytes"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/courier-service/internal/api/http/handlers"
	"github.com/spec-kit/courier-service/internal/auth"
	"github.com/spec-kit/courier-service/internal/config"
	"github.com/spec-kit/courier-service/internal/events"
	"github.com/spec-kit/courier-service/internal/lifecycle"
	"github.com/spec-kit/courier-service/internal/observability"
	"github.com/spec-kit/courier-service/internal/repository"
	"github.com/spec-kit/courier-service/internal/repository/memory"
	"github.com/spec-kit/courier-service/internal/service"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t   *testing.T
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App:        config.AppConfig{Name: "courier-service", Version: "test"},
		Auth:       config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4},
		SuperAdmin: config.SuperAdminConfig{Username: "admin", Password: "admin123"},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	store := memory.New(repository.StoreOptions{OnCodeCollision: metrics.RecordCodeCollision})
	store.SeedDemo(time.Now())
	repos := store.Repositories()

	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewActivityService(dispatcher, logger, metrics).RegisterHandlers()
	engine := lifecycle.NewEngine(lifecycle.Dependencies{Packages: repos.Packages, Dispatcher: dispatcher, Logger: logger})

	packageService := service.NewPackageService(service.PackageDependencies{
		Engine:          engine,
		UserRepo:        repos.Users,
		BranchRepo:      repos.Branches,
		ClientRepo:      repos.Clients,
		DistributorRepo: repos.Distributors,
		Logger:          logger,
	})
	userService := service.NewUserService(cfg, service.UserDependencies{
		UserRepo:   repos.Users,
		RoleRepo:   repos.Roles,
		BranchRepo: repos.Branches,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo: repos.Users,
		Sessions: auth.NewMemorySessionStore(),
		Logger:   logger,
	})
	refService := service.NewReferenceService(service.ReferenceDependencies{
		BranchRepo:      repos.Branches,
		ClientRepo:      repos.Clients,
		DistributorRepo: repos.Distributors,
	})

	app := NewApp(cfg.App.Name)
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, config.StorageMemory),
		Auth:           handlers.NewAuthHandler(authService),
		Packages:       handlers.NewPackagesHandler(packageService),
		Tracking:       handlers.NewTrackingHandler(packageService),
		Users:          handlers.NewUsersHandler(userService),
		Directory:      handlers.NewDirectoryHandler(userService),
		Reference:      handlers.NewReferenceHandler(refService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), authService.Sessions()),
		Metrics:        metrics,
	})
	return &testServer{t: t, app: app}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	status, env := s.do(nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, nethttp.StatusOK, status)
	var data struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(s.t, data.Auth.Token)
	return data.Auth.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	status, _ = srv.do(nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "courier_http_requests_total")
}

func TestPublicTracking(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(nethttp.MethodGet, "/api/tracking/TM-2026-0001", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	view := decode[map[string]any](t, env)
	assert.Equal(t, "In Transit", view["status"])
	assert.Equal(t, "d1", view["sender"].(map[string]any)["id"])
	assert.Len(t, view["history"], 2)
	assert.NotContains(t, view, "password_hash")

	status, env = srv.do(nethttp.MethodGet, "/api/tracking/TM-2026-9999", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, _ = srv.do(nethttp.MethodPost, "/api/tracking/TM-2026-0001/reschedule", "",
		map[string]string{"date": "2026-05-01", "start_time": "10:00"})
	assert.Equal(t, nethttp.StatusConflict, status)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(nethttp.MethodGet, "/api/packages", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, _ = srv.do(nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin", "password": "nope"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	token := srv.login("admin", "admin123")
	status, env = srv.do(nethttp.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	me := decode[map[string]any](t, env)
	assert.Equal(t, "Administrator", me["role"])

	status, _ = srv.do(nethttp.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, nethttp.StatusNoContent, status)
	status, _ = srv.do(nethttp.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestCatalogs(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login("admin", "admin123")

	status, env := srv.do(nethttp.MethodGet, "/api/statuses", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, []string{"In Warehouse", "In Transit", "Delivered", "Failed Attempt"}, decode[[]string](t, env))

	status, env = srv.do(nethttp.MethodGet, "/api/roles", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 3)

	status, env = srv.do(nethttp.MethodGet, "/api/branches", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 2)

	status, env = srv.do(nethttp.MethodPost, "/api/clients", token, map[string]string{"name": "Ana", "type": "company"})
	require.Equal(t, nethttp.StatusCreated, status)
	created := decode[map[string]any](t, env)
	assert.Equal(t, "company", created["type"])

	status, _ = srv.do(nethttp.MethodPut, "/api/distributors/d9", token, map[string]string{"trade_name": "X"})
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestPackageLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login("admin", "admin123")

	status, env := srv.do(nethttp.MethodPost, "/api/users", admin, map[string]any{
		"name": "Cesar", "email": "cesar@example.com", "password": "pw", "role_id": "r3",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	courierUser := decode[map[string]any](t, env)
	courierID := courierUser["id"].(string)
	assert.NotContains(t, courierUser, "password_hash")

	status, _ = srv.do(nethttp.MethodPost, "/api/users", admin, map[string]any{
		"name": "Dup", "email": "CESAR@example.com", "password": "pw", "role_id": "r3",
	})
	assert.Equal(t, nethttp.StatusConflict, status)

	status, env = srv.do(nethttp.MethodPost, "/api/packages", admin, map[string]any{
		"shipment_type":    "client_to_client",
		"sender_id":        "c2",
		"recipient_id":     "c1",
		"origin_branch_id": "b1",
		"courier_id":       courierID,
		"destination_text": "Jr. Perú 123",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	pkg := decode[map[string]any](t, env)
	pkgID := pkg["id"].(string)
	assert.Equal(t, "In Warehouse", pkg["status"])
	assert.Equal(t, "c2", pkg["sender"].(map[string]any)["id"])
	assert.Regexp(t, `^TM-\d{4}-\d{4}$`, pkg["tracking_code"])

	status, env = srv.do(nethttp.MethodPost, "/api/packages", admin, map[string]any{
		"shipment_type":    "client_to_client",
		"sender_id":        "c1",
		"recipient_id":     "c1",
		"origin_branch_id": "b1",
		"destination_text": "Jr. Perú 123",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, _ = srv.do(nethttp.MethodPatch, "/api/packages/"+pkgID+"/status", admin, map[string]string{"status": "Lost"})
	assert.Equal(t, nethttp.StatusBadRequest, status)

	courier := srv.login("cesar@example.com", "pw")

	status, _ = srv.do(nethttp.MethodPatch, "/api/packages/"+pkgID+"/status", courier, map[string]string{"status": "In Transit"})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, env = srv.do(nethttp.MethodPatch, "/api/packages/"+pkgID+"/status", courier, map[string]string{"status": "Delivered"})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Delivered", decode[map[string]any](t, env)["status"])

	status, env = srv.do(nethttp.MethodGet, "/api/couriers/me/packages", courier, nil)
	require.Equal(t, nethttp.StatusOK, status)
	mine := decode[[]map[string]any](t, env)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0]["history"], 2)

	status, _ = srv.do(nethttp.MethodGet, "/api/packages/p1", courier, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, _ = srv.do(nethttp.MethodPost, "/api/packages", courier, map[string]any{"sender_id": "d1"})
	assert.Equal(t, nethttp.StatusForbidden, status)
	status, _ = srv.do(nethttp.MethodGet, "/api/users", courier, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)
	status, _ = srv.do(nethttp.MethodPost, "/api/branches", courier, map[string]string{"name": "X", "address": "Y"})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, env = srv.do(nethttp.MethodGet, "/api/packages?status=Delivered", admin, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 1)

	status, env = srv.do(nethttp.MethodPost, "/api/packages/p1/reschedule", admin,
		map[string]string{"date": "2026-05-01", "start_time": "22:30"})
	require.Equal(t, nethttp.StatusOK, status)
	rescheduled := decode[map[string]any](t, env)
	assert.Equal(t, "23:59", rescheduled["reschedule"].(map[string]any)["end_time"])

	status, _ = srv.do(nethttp.MethodDelete, "/api/users/"+courierID, admin, nil)
	assert.Equal(t, nethttp.StatusNoContent, status)
}

func TestWritesKeyedByRouteParamSurviveLaterRequests(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login("admin", "admin123")

	status, _ := srv.do(nethttp.MethodPatch, "/api/packages/p1/status", admin, map[string]string{"status": "Failed Attempt"})
	require.Equal(t, nethttp.StatusOK, status)
	status, _ = srv.do(nethttp.MethodPut, "/api/branches/b2", admin, map[string]string{"name": "Norte", "address": "Jr. Logística 789"})
	require.Equal(t, nethttp.StatusOK, status)

	for i := 0; i < 5; i++ {
		status, _ = srv.do(nethttp.MethodGet, "/api/tracking/TM-2026-0001", "", nil)
		require.Equal(t, nethttp.StatusOK, status)
	}

	status, env := srv.do(nethttp.MethodGet, "/api/packages/p1", admin, nil)
	require.Equal(t, nethttp.StatusOK, status)
	detail := decode[map[string]any](t, env)
	history := detail["history"].([]any)
	require.Len(t, history, 3)
	assert.Equal(t, "Failed Attempt", detail["status"])
	assert.Equal(t, "Failed Attempt", history[2].(map[string]any)["status"])

	status, env = srv.do(nethttp.MethodGet, "/api/branches", admin, nil)
	require.Equal(t, nethttp.StatusOK, status)
	ids := make([]string, 0)
	for _, branch := range decode[[]map[string]any](t, env) {
		ids = append(ids, branch["id"].(string))
	}
	assert.ElementsMatch(t, []string{"b1", "b2"}, ids)
}
