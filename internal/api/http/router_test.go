package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/query-desk/internal/api/http/handlers"
	"github.com/spec-kit/query-desk/internal/auth"
	"github.com/spec-kit/query-desk/internal/dashboard"
	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/observability"
	"github.com/spec-kit/query-desk/internal/persistence"
	"github.com/spec-kit/query-desk/internal/repository"
	"github.com/spec-kit/query-desk/internal/service"
)

type testServer struct {
	app   *fiber.App
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	store := persistence.NewMemoryKV()
	metrics := observability.NewMetrics()

	queries := service.NewQueryService(service.QueryDependencies{
		Repo:       repository.NewTicketRepository(store),
		Policy:     service.FixedPolicy{},
		Dispatcher: events.NewInMemoryDispatcher(logger),
		Metrics:    metrics,
		Logger:     logger,
	})
	if err := queries.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	cred, err := auth.NewCredential("yuvraj mishra", "123456", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("credential: %v", err)
	}
	sessions := repository.NewSessionRepository(store)
	authService := service.NewAuthService(cred, auth.NewTokenManager("test", 5), sessions, logger)

	controller := dashboard.NewController(queries, dashboard.Options{Logger: logger})
	if err := controller.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	t.Cleanup(controller.Unmount)

	validate := validator.New()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("query-desk", "test", "memory", store),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(authService, validate),
		Queries:        handlers.NewQueriesHandler(controller),
		Dashboard:      handlers.NewDashboardHandler(controller, validate),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), sessions),
	})
	return &testServer{app: app}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	code, body := s.do(t, "POST", "/auth/login", `{"username":"yuvraj mishra","password":"123456"}`)
	if code != fiber.StatusOK {
		t.Fatalf("login: got %d %v", code, body)
	}
	s.token = body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func items(body map[string]any) []any {
	data, _ := body["data"].(map[string]any)
	list, _ := data["items"].([]any)
	return list
}

func firstID(t *testing.T, s *testServer) string {
	t.Helper()
	_, body := s.do(t, "GET", "/queries", "")
	list := items(body)
	if len(list) == 0 {
		t.Fatalf("no queries listed")
	}
	return list[0].(map[string]any)["id"].(string)
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, "POST", "/auth/login", `{"username":"yuvraj mishra","password":"nope"}`)
	if code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if msg := body["error"].(map[string]any)["message"]; msg != service.InvalidCredentialsMessage {
		t.Fatalf("unexpected message %v", msg)
	}
	if code, _ := s.do(t, "GET", "/dashboard", ""); code != fiber.StatusUnauthorized {
		t.Fatalf("dashboard must require login, got %d", code)
	}

	s.login(t)
	_, body = s.do(t, "GET", "/auth/session", "")
	if !body["data"].(map[string]any)["authenticated"].(bool) {
		t.Fatalf("expected active session")
	}

	if code, _ := s.do(t, "POST", "/auth/logout", ""); code != fiber.StatusNoContent {
		t.Fatalf("logout: got %d", code)
	}
	if code, _ := s.do(t, "GET", "/dashboard", ""); code != fiber.StatusUnauthorized {
		t.Fatalf("token must stop working after logout, got %d", code)
	}
}

func TestDashboardView(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	code, body := s.do(t, "GET", "/dashboard", "")
	if code != fiber.StatusOK || len(items(body)) != 4 {
		t.Fatalf("expected 4 seeded queries, got %d %v", code, body)
	}
	counts := body["data"].(map[string]any)["counts"].(map[string]any)
	if counts["pending"].(float64) != 4 {
		t.Fatalf("unexpected counts %v", counts)
	}

	code, body = s.do(t, "GET", "/dashboard?filter=replied", "")
	if code != fiber.StatusOK || len(items(body)) != 0 {
		t.Fatalf("expected empty replied view, got %d %v", code, body)
	}
	if code, body := s.do(t, "GET", "/dashboard?filter=closed", ""); code != fiber.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Fatalf("expected invalid filter rejection, got %d %v", code, body)
	}

	code, body = s.do(t, "POST", "/dashboard/refresh", "")
	if code != fiber.StatusOK {
		t.Fatalf("refresh: got %d %v", code, body)
	}
}

func TestQueryActions(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	id := firstID(t, s)

	code, body := s.do(t, "GET", "/queries/"+id+"/contact", "")
	if code != fiber.StatusOK || !strings.HasPrefix(body["data"].(map[string]any)["link"].(string), "mailto:") {
		t.Fatalf("contact: got %d %v", code, body)
	}

	if code, _ := s.do(t, "PUT", "/dashboard/selection/"+id, ""); code != fiber.StatusOK {
		t.Fatalf("select: got %d", code)
	}

	code, body = s.do(t, "POST", "/queries/"+id+"/reply", "")
	if code != fiber.StatusOK {
		t.Fatalf("reply: got %d %v", code, body)
	}
	data := body["data"].(map[string]any)
	if data["selected"] != nil {
		t.Fatalf("detail view must close after replying, got %v", data["selected"])
	}
	if code, body := s.do(t, "POST", "/queries/"+id+"/reply", ""); code != fiber.StatusConflict || errorCode(body) != "ALREADY_REPLIED" {
		t.Fatalf("expected already replied, got %d %v", code, body)
	}

	_, body = s.do(t, "GET", "/queries?status=replied", "")
	if len(items(body)) != 1 {
		t.Fatalf("expected one replied query, got %v", body)
	}

	if code, body := s.do(t, "DELETE", "/queries/"+id, ""); code != fiber.StatusPreconditionRequired || errorCode(body) != "CONFIRMATION_REQUIRED" {
		t.Fatalf("expected confirmation required, got %d %v", code, body)
	}
	if code, _ := s.do(t, "DELETE", "/queries/"+id+"?confirm=true", ""); code != fiber.StatusOK {
		t.Fatalf("delete: got %d", code)
	}
	if code, body := s.do(t, "DELETE", "/queries/"+id+"?confirm=true", ""); code != fiber.StatusNotFound || errorCode(body) != "VALIDATION_STALE" {
		t.Fatalf("expected stale rejection, got %d %v", code, body)
	}
	if code, _ := s.do(t, "GET", "/queries/"+id, ""); code != fiber.StatusNotFound {
		t.Fatalf("expected deleted query to be gone, got %d", code)
	}
}

func TestAdminClear(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	malformed := []string{`{}`, `{"confirm":"yes"}`, `{"confirm":null}`}
	for _, payload := range malformed {
		code, body := s.do(t, "POST", "/admin/clear", payload)
		if code != fiber.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
			t.Fatalf("%s: expected validation failure, got %d %v", payload, code, body)
		}
	}
	for _, payload := range []string{"", `{"confirm":false}`} {
		code, body := s.do(t, "POST", "/admin/clear", payload)
		if code != fiber.StatusPreconditionRequired || errorCode(body) != "CONFIRMATION_REQUIRED" {
			t.Fatalf("%q: expected confirmation required, got %d %v", payload, code, body)
		}
	}
	code, body := s.do(t, "POST", "/admin/clear", `{"confirm":true}`)
	if code != fiber.StatusOK || len(items(body)) != 0 {
		t.Fatalf("clear: got %d %v", code, body)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	if code, _ := s.do(t, "GET", "/health/live", ""); code != fiber.StatusOK {
		t.Fatalf("live: got %d", code)
	}
	code, body := s.do(t, "GET", "/health/ready", "")
	if code != fiber.StatusOK || body["dependencies"].(map[string]any)["memory"] != "ok" {
		t.Fatalf("ready: got %d %v", code, body)
	}
	if code, body := s.do(t, "GET", "/nowhere", ""); code != fiber.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("unknown route: got %d %v", code, body)
	}
	code, body = s.do(t, "GET", "/metrics", "")
	if code != fiber.StatusOK {
		t.Fatalf("metrics: got %d", code)
	}
	requests := body["data"].(map[string]any)["requests"].(map[string]any)
	if len(requests) == 0 {
		t.Fatalf("expected earlier requests to be counted")
	}
}
