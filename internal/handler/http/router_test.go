package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/propconnect/propconnect/internal/auth"
	"github.com/propconnect/propconnect/internal/service"
	apperrors "github.com/propconnect/propconnect/pkg/errors"
	"github.com/propconnect/propconnect/pkg/health"
	"github.com/propconnect/propconnect/pkg/httputil"
	"github.com/propconnect/propconnect/pkg/middleware"
)

// Fixed ids used across handler tests.
const (
	ownerID    = "11111111-1111-1111-1111-111111111111"
	otherID    = "22222222-2222-2222-2222-222222222222"
	adminID    = "33333333-3333-3333-3333-333333333333"
	propertyID = "44444444-4444-4444-4444-444444444444"
)

type testEnv struct {
	router     http.Handler
	users      *mockUserRepo
	properties *mockPropertyRepo
	tasks      *service.DetachedTasks
	hasher     *auth.PasswordHasher
}

// stubValidator accepts tokens of the form "<user id>:<role>".
func stubValidator(_ context.Context, token string) (*middleware.Claims, error) {
	id, role, ok := strings.Cut(token, ":")
	if !ok || id == "" {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return &middleware.Claims{UserID: id, Role: role}, nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(subjectID, role string) (string, error) {
	return subjectID + ":" + role, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := auth.NewPasswordHasher(4)
	require.NoError(t, err)

	env := &testEnv{
		users:      new(mockUserRepo),
		properties: new(mockPropertyRepo),
		tasks:      service.NewDetachedTasks(time.Second, newTestLogger()),
		hasher:     hasher,
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = env.tasks.Wait(ctx)
	})

	logger := newTestLogger()
	authSvc := service.NewAuthService(env.users, hasher, stubIssuer{}, nil, env.tasks, logger)
	propertySvc := service.NewPropertyService(env.properties, nil, nil, env.tasks, logger)

	env.router = NewRouter(RouterConfig{
		AuthService:     authSvc,
		PropertyService: propertySvc,
		TokenValidator:  stubValidator,
		Health:          health.NewHandler(),
		Logger:          logger,
		CORS:            middleware.DefaultCORSConfig("http://localhost:3000"),
		Cookie:          CookieConfig{Secure: true, TTL: time.Hour},
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) httputil.Response {
	t.Helper()
	var raw struct {
		Data  json.RawMessage         `json:"data"`
		Error *httputil.ErrorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return httputil.Response{Error: raw.Error}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
