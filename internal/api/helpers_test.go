package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/beautyhome/studio-api/internal/auth"
	"github.com/beautyhome/studio-api/internal/booking"
	"github.com/beautyhome/studio-api/internal/bunny"
	"github.com/beautyhome/studio-api/internal/payments"
	"github.com/beautyhome/studio-api/internal/ratelimit"
	"github.com/beautyhome/studio-api/internal/storage"
	"github.com/beautyhome/studio-api/internal/testutil/mockstorage"
)

const testAdminSecret = "admin-pass"

type sessionFunc func(ctx context.Context, id string) (*payments.Session, error)

func (f sessionFunc) CheckoutSession(ctx context.Context, id string) (*payments.Session, error) {
	return f(ctx, id)
}

type testEnv struct {
	storage  *mockstorage.Server
	facade   *storage.Facade
	sessions *auth.SessionManager
	router   http.Handler
}

type envConfig struct {
	payments booking.SessionLookup
	sql      bool
}

type envOption func(*envConfig)

func withPayments(p booking.SessionLookup) envOption {
	return func(c *envConfig) { c.payments = p }
}

func withSQL() envOption {
	return func(c *envConfig) { c.sql = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	server := mockstorage.New()
	t.Cleanup(server.Close)
	client := bunny.NewClient(server.Zone(), server.AccessKey(), bunny.WithBaseURL(server.URL()))
	docs := storage.NewDocumentStore(client, nil)

	var rel storage.Relational
	if cfg.sql {
		db, err := storage.Open(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		rel = db
	}
	facade := storage.NewFacade(docs, rel, nil)

	bopts := []booking.Option{}
	if cfg.payments != nil {
		bopts = append(bopts, booking.WithPayments(cfg.payments))
	}
	svc := booking.NewService(facade, bopts...)

	sessions, err := auth.NewSessionManager([]byte("test-session-secret"), 0)
	require.NoError(t, err)
	authn := auth.NewAuthenticator(facade, sessions, nil)
	gate := auth.NewGate(sessions, testAdminSecret)

	h := NewHandler(facade, svc, authn, gate, WithLimiter(ratelimit.New(ratelimit.NewMemoryStore(), nil)))
	return &testEnv{storage: server, facade: facade, sessions: sessions, router: h.NewRouter()}
}

func (e *testEnv) do(t *testing.T, method, target, body string, setup ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, fn := range setup {
		fn(req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func withAdminKey(r *http.Request) {
	r.Header.Set(auth.AdminKeyHeader, testAdminSecret)
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func mustHash(t *testing.T, s string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEnvGate(t *testing.T) *auth.Gate {
	t.Helper()
	sessions, err := auth.NewSessionManager([]byte("test-session-secret"), 0)
	require.NoError(t, err)
	return auth.NewGate(sessions, testAdminSecret)
}
