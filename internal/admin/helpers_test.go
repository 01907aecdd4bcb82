package admin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"golang.org/x/crypto/bcrypt"

	"github.com/arborview/enroll/internal/auth"
	"github.com/arborview/enroll/internal/storage"
)

// testEnv wires a full handler over an in-memory database, the way the
// composition root does in production.
type testEnv struct {
	handler *Handler
	router  http.Handler
	store   *storage.SQLiteStorage
	tokens  *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService("integration-test-secret-0123456789ab", 15*time.Minute, 24*time.Hour, 32)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	cookies := auth.NewCookies(false, 15*time.Minute, 24*time.Hour)
	sessions := auth.NewSessionIssuer(store, tokens, logger)
	authenticator := auth.NewRequestAuthenticator(cookies, tokens, sessions)
	access := auth.NewAdminAccessService(store, hasher, sessions, authenticator, logger)
	policy := auth.NewSuperAdminPolicy(store, logger)

	h := NewHandler(store, access, policy, hasher, cookies, new(slog.LevelVar), logger)
	return &testEnv{
		handler: h,
		router:  h.NewRouter(logger),
		store:   store,
		tokens:  tokens,
	}
}

// do runs one request through the router, carrying the given cookies.
func (e *testEnv) do(method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

// setup bootstraps the first admin and returns its session cookies.
func (e *testEnv) setup(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	w := e.do(http.MethodPost, "/auth/setup",
		`{"email":"`+email+`","password":"`+password+`"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("setup returned %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

// login authenticates and returns the session cookies.
func (e *testEnv) login(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	w := e.do(http.MethodPost, "/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

// decode unmarshals a JSON response body into v.
func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// wantAPIError asserts a JSON error response with the given status and code.
func wantAPIError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	var apiErr APIError
	decode(t, w, &apiErr)
	if apiErr.Error != code {
		t.Errorf("error code = %q, want %q", apiErr.Error, code)
	}
	if apiErr.Message == "" {
		t.Errorf("error message should not be empty")
	}
}

// sessionCookie pulls a named cookie out of a set, nil if absent.
func sessionCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
