package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/observability"
	"github.com/Raj-Randive/soar-school-management-system/internal/ratelimit"
	"github.com/Raj-Randive/soar-school-management-system/internal/validation"
)

type fixture struct {
	app      *fiber.App
	pipeline *Pipeline
	tokens   *auth.TokenManager
}

func newFixture(t *testing.T, apiMax int) *fixture {
	t.Helper()
	logger := zap.NewNop()
	tokens, err := auth.NewTokenManager("pipeline-secret", time.Hour)
	require.NoError(t, err)

	limiter, err := ratelimit.New(LimiterAPI, time.Minute, apiMax, ratelimit.NewMemoryStore(nil), logger)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{Immutable: true, ErrorHandler: ErrorHandler(logger, true)})
	RegisterMiddlewares(app, logger, observability.NewMetrics(), MiddlewareOptions{
		Timeout:              time.Second,
		ExposeInternalErrors: true,
		CORSAllowOrigins:     "https://admin.example.com",
	})

	p, err := NewPipeline(app, auth.NewAccessGuard(tokens), limiter)
	require.NoError(t, err)
	return &fixture{app: app, pipeline: p, tokens: tokens}
}

func (f *fixture) token(t *testing.T, role domain.Role) string {
	t.Helper()
	tok, _, err := f.tokens.Issue(auth.Subject{ID: "u-" + string(role), Role: role})
	require.NoError(t, err)
	return tok
}

func (f *fixture) send(t *testing.T, method, target, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func ok(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) }

func TestPipeline_StageOrder(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.pipeline.Mount("/things", []Route{{
		Method:  fiber.MethodPost,
		Path:    "/",
		Limiter: LimiterAPI,
		Roles:   []domain.Role{domain.RoleSuperAdmin},
		Rules:   []validation.Rule{validation.Body("name").Required("Name is required")},
		Handler: ok,
	}}))

	// The limiter admits the first request and the guard rejects it.
	status, _ := f.send(t, fiber.MethodPost, "/things/", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	// The limiter rejects before the guard ever sees a valid token.
	status, body := f.send(t, fiber.MethodPost, "/things/", f.token(t, domain.RoleSuperAdmin), `{"name":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, false, body["ok"])
}

func TestPipeline_GuardBeforeValidation(t *testing.T) {
	f := newFixture(t, 100)
	require.NoError(t, f.pipeline.Mount("/things", []Route{{
		Method:  fiber.MethodPost,
		Path:    "/",
		Limiter: LimiterAPI,
		Roles:   []domain.Role{domain.RoleSuperAdmin},
		Rules:   []validation.Rule{validation.Body("name").Required("Name is required")},
		Handler: ok,
	}}))

	status, _ := f.send(t, fiber.MethodPost, "/things/", f.token(t, domain.RoleSchoolAdmin), `{}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := f.send(t, fiber.MethodPost, "/things/", f.token(t, domain.RoleSuperAdmin), `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "errors")

	status, _ = f.send(t, fiber.MethodPost, "/things/", f.token(t, domain.RoleSuperAdmin), `{"name":"x"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestPipeline_PublicRouteHasOnlyHandler(t *testing.T) {
	f := newFixture(t, 100)
	stages, err := f.pipeline.Stages(Route{Method: fiber.MethodGet, Path: "/", Handler: ok})
	require.NoError(t, err)
	assert.Len(t, stages, 1)

	stages, err = f.pipeline.Stages(Route{
		Method: fiber.MethodGet, Path: "/", Limiter: LimiterAPI,
		Roles:   []domain.Role{domain.RoleSuperAdmin},
		Rules:   []validation.Rule{validation.Param("id").UUID("bad id")},
		Handler: ok,
	})
	require.NoError(t, err)
	assert.Len(t, stages, 4)
}

func TestPipeline_StagesErrors(t *testing.T) {
	f := newFixture(t, 100)

	_, err := f.pipeline.Stages(Route{Method: fiber.MethodGet, Path: "/"})
	assert.ErrorContains(t, err, "no handler")

	_, err = f.pipeline.Stages(Route{Method: fiber.MethodGet, Path: "/", Limiter: "missing", Handler: ok})
	assert.ErrorContains(t, err, "unknown limiter")

	unguarded, err := NewPipeline(fiber.New(), nil)
	require.NoError(t, err)
	_, err = unguarded.Stages(Route{Method: fiber.MethodGet, Path: "/", Roles: []domain.Role{domain.RoleSuperAdmin}, Handler: ok})
	assert.ErrorContains(t, err, "access guard")
}

func TestPipeline_MountIsAllOrNothing(t *testing.T) {
	f := newFixture(t, 100)
	err := f.pipeline.Mount("/mixed", []Route{
		{Method: fiber.MethodGet, Path: "/good", Handler: ok},
		{Method: fiber.MethodGet, Path: "/bad", Limiter: "missing", Handler: ok},
	})
	require.Error(t, err)

	status, _ := f.send(t, fiber.MethodGet, "/mixed/good", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNewPipeline_RejectsDuplicateLimiters(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	a, err := ratelimit.New("api", time.Minute, 1, store, zap.NewNop())
	require.NoError(t, err)
	b, err := ratelimit.New("api", time.Minute, 5, store, zap.NewNop())
	require.NoError(t, err)

	_, err = NewPipeline(fiber.New(), nil, a, b)
	assert.Error(t, err)

	_, err = NewPipeline(nil, nil)
	assert.Error(t, err)
}

func TestMiddleware_ErrorEnvelopes(t *testing.T) {
	f := newFixture(t, 100)
	require.NoError(t, f.pipeline.Mount("/fail", []Route{
		{Method: fiber.MethodGet, Path: "/panic", Handler: func(*fiber.Ctx) error { panic("boom") }},
		{Method: fiber.MethodGet, Path: "/slow", Handler: func(c *fiber.Ctx) error {
			<-c.UserContext().Done()
			return c.UserContext().Err()
		}},
		{Method: fiber.MethodGet, Path: "/plain", Handler: func(*fiber.Ctx) error { return errors.New("db down") }},
	}))

	status, body := f.send(t, fiber.MethodGet, "/fail/panic", "", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["ok"])

	status, _ = f.send(t, fiber.MethodGet, "/fail/slow", "", "")
	assert.Equal(t, http.StatusGatewayTimeout, status)

	status, body = f.send(t, fiber.MethodGet, "/fail/plain", "", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body["errors"], "db down")
}

func TestToDomainError_FiberAndDeadline(t *testing.T) {
	de := toDomainError(fiber.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusMethodNotAllowed, de.HTTPStatus)
	assert.Equal(t, "METHOD_NOT_ALLOWED", de.Code)

	de = toDomainError(context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, de.HTTPStatus)
}

func TestMiddleware_CORS(t *testing.T) {
	f := newFixture(t, 100)
	require.NoError(t, f.pipeline.Mount("/things", []Route{{Method: fiber.MethodGet, Path: "/", Handler: ok}}))

	preflight := httptest.NewRequest(http.MethodOptions, "/things/", nil)
	preflight.Header.Set("Origin", "https://admin.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := f.app.Test(preflight, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://admin.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	simple := httptest.NewRequest(http.MethodGet, "/things/", nil)
	simple.Header.Set("Origin", "https://elsewhere.example.com")
	resp, err = f.app.Test(simple, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
