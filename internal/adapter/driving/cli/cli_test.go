package cli_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/detectpanel/internal/adapter/driven/adminapi"
	"github.com/ericfisherdev/detectpanel/internal/adapter/driving/cli"
	"github.com/ericfisherdev/detectpanel/internal/application"
	"github.com/ericfisherdev/detectpanel/internal/config"
	"github.com/ericfisherdev/detectpanel/internal/domain/model"
	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// memStore is a SessionStore shared across command runs.
type memStore struct {
	mu      sync.Mutex
	session model.Session
}

func (m *memStore) Load(_ context.Context) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *memStore) Save(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	return nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = model.Session{}
	return nil
}

func (m *memStore) get() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

type fakeClipboard struct {
	text string
}

func (f *fakeClipboard) WriteText(text string) error {
	f.text = text
	return nil
}

// backend is a fake detection service admin API.
type backend struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]map[string]any
	filter   string
}

func (b *backend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
}

func (b *backend) saw(request string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r == request {
			return true
		}
	}
	return false
}

func (b *backend) body(request string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[request]
}

func (b *backend) decode(t *testing.T, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Errorf("decode %s %s: %v", r.Method, r.URL.Path, err)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies[r.Method+" "+r.URL.Path] = body
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) handler(t *testing.T) http.Handler {
	key := map[string]any{
		"id": 1, "name": "ci-runner", "key_value_preview": "sk-12...",
		"created_at": "2026-04-01T10:00:00", "is_active": true, "request_count": 1234,
		"expires_at": nil, "expiration_status": "never",
	}
	detail := map[string]any{
		"id": 1, "name": "ci-runner", "key_value": "sk-secret",
		"created_at": "2026-04-01T10:00:00", "is_active": true,
		"expiration_type": "never", "created_by": "admin",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "hunter2" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"access_token": "tok-1", "token_type": "bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /admin/stats/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]any{"total_requests_today": 1500, "success_rate": 99.5})
	})
	mux.HandleFunc("GET /admin/keys", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.filter = r.URL.Query().Get("filter_status")
		b.mu.Unlock()
		reply(w, http.StatusOK, []any{key})
	})
	mux.HandleFunc("GET /admin/keys/1", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, detail)
	})
	mux.HandleFunc("POST /admin/keys", func(w http.ResponseWriter, r *http.Request) {
		b.decode(t, r)
		reply(w, http.StatusOK, map[string]any{
			"id": 2, "name": "new-key", "key_value": "sk-new",
			"created_at": "2026-05-01T12:00:00", "is_active": true,
			"expiration_type": "duration", "daily_limit": 100, "created_by": "admin",
		})
	})
	mux.HandleFunc("PATCH /admin/keys/1/renew", func(w http.ResponseWriter, r *http.Request) {
		b.decode(t, r)
		reply(w, http.StatusOK, detail)
	})
	mux.HandleFunc("PATCH /admin/keys/1/toggle", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, detail)
	})
	mux.HandleFunc("DELETE /admin/keys/1", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]string{"message": "deleted"})
	})
	mux.HandleFunc("GET /admin/models", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, []any{})
	})
	mux.HandleFunc("GET /admin/models/1/download", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("weights"))
	})
	mux.HandleFunc("GET /admin/models/2/download", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusNotFound, map[string]string{"detail": "Model file not found"})
	})
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]string{"status": "ok", "service": "captcha-detector"})
	})
	mux.HandleFunc("POST /api/v1/detect", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "sk-secret" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid API key"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"detections": []any{}, "count": 0})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		if strings.HasPrefix(r.URL.Path, "/admin/") && r.URL.Path != "/admin/auth/login" &&
			r.Header.Get("Authorization") != "Bearer tok-1" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

type env struct {
	backend *backend
	server  *httptest.Server
	store   *memStore
	clip    *fakeClipboard
	clock   clockwork.Clock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	for _, name := range []string{"DETECTPANEL_CONFIG", "DETECTPANEL_API_BASE", "DETECTPANEL_HTTP_TIMEOUT", "DETECTPANEL_SECRET_KEY", "DETECTPANEL_LOG_LEVEL"} {
		t.Setenv(name, "")
	}

	e := &env{
		backend: &backend{bodies: map[string]map[string]any{}},
		store:   &memStore{},
		clip:    &fakeClipboard{},
		clock:   clockwork.NewFakeClockAt(testNow),
	}
	e.server = httptest.NewServer(e.backend.handler(t))
	t.Cleanup(e.server.Close)
	return e
}

func (e *env) signedIn() *env {
	e.store.session = model.Session{Token: "tok-1", Username: "admin"}
	return e
}

func (e *env) setup(_ context.Context, _ *config.Config, ui driven.Interaction, logger *slog.Logger) (*application.Console, io.Closer, error) {
	client, err := adminapi.NewClientWithHTTPClient(e.server.Client(), e.server.URL)
	if err != nil {
		return nil, nil, err
	}
	return application.NewConsole(client, e.store, ui, e.clip, logger, application.WithClock(e.clock)), nil, nil
}

// run executes one command and returns its exit status and output.
func (e *env) run(stdin string, args ...string) (code int, stdout, stderr string) {
	var out, errOut strings.Builder
	code = cli.Execute(context.Background(), cli.Options{
		In:    strings.NewReader(stdin),
		Out:   &out,
		Err:   &errOut,
		Setup: e.setup,
		Clock: e.clock,
	}, args)
	return code, out.String(), errOut.String()
}

func TestLogin_StoresSession(t *testing.T) {
	e := newEnv(t)

	code, stdout, stderr := e.run("hunter2\n", "login", "-u", "admin")

	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Logged in as admin.")
	assert.Equal(t, model.Session{Token: "tok-1", Username: "admin"}, e.store.get())
	assert.True(t, e.backend.saw("GET /admin/stats/dashboard"), "dashboard loads after login")
}

func TestLogin_PromptsForUsername(t *testing.T) {
	e := newEnv(t)

	code, _, stderr := e.run("admin\nhunter2\n", "login")

	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, "admin", e.store.get().Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)

	code, _, stderr := e.run("nope\n", "login", "-u", "admin")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: Invalid credentials")
	assert.False(t, e.store.get().Authenticated())
}

func TestLogin_WrongPasswordEndsStoredSession(t *testing.T) {
	e := newEnv(t).signedIn()

	code, _, stderr := e.run("nope\n", "login", "-u", "bob")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: Invalid credentials")
	assert.False(t, e.store.get().Authenticated())

	code, _, stderr = e.run("", "keys", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not logged in")
}

func TestLogout_ClearsSession(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, _ := e.run("", "logout")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Logged out.")
	assert.False(t, e.store.get().Authenticated())
}

func TestStatus(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, _ := e.run("", "status")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "logged in as admin")
	assert.Contains(t, stdout, "unencrypted")
}

func TestCommands_RequireLogin(t *testing.T) {
	e := newEnv(t)

	for _, args := range [][]string{
		{"dashboard"},
		{"keys", "list"},
		{"keys", "delete", "1"},
		{"models", "list"},
		{"logs"},
	} {
		code, _, stderr := e.run("", args...)
		assert.Equal(t, 1, code, args)
		assert.Contains(t, stderr, "not logged in", args)
	}
	assert.Empty(t, e.backend.requests)
}

func TestExpiredToken_EndsSession(t *testing.T) {
	e := newEnv(t)
	e.store.session = model.Session{Token: "stale", Username: "admin"}

	code, _, stderr := e.run("", "keys", "list")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not logged in")
	assert.False(t, e.store.get().Authenticated(), "rejected token is cleared from the store")
	assert.False(t, e.backend.saw("GET /admin/keys"), "reload stops after the session ends")
}

func TestDashboard(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, stderr := e.run("", "dashboard")

	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Signed in as admin")
	assert.Contains(t, stdout, "1,500")
	assert.Contains(t, stdout, "ci-runner")
	assert.Contains(t, stdout, "No models uploaded.")
}

func TestKeysList(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, _ := e.run("", "keys", "list", "--status", "never")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "ci-runner")
	assert.Contains(t, stdout, "sk-12...")
	assert.Contains(t, stdout, "1,234")
	assert.Equal(t, "never", e.backend.filter)
}

func TestKeysCreate(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, stderr := e.run("", "keys", "create", "--name", "new-key",
		"--expiration", "duration", "--days", "10", "--daily-limit", "100")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "API key created successfully!")
	assert.Contains(t, stdout, "sk-new")
	assert.Contains(t, stdout, "100 requests/day")
	assert.Equal(t, map[string]any{
		"name":            "new-key",
		"expiration_type": "duration",
		"duration_days":   float64(10),
		"daily_limit":     float64(100),
	}, e.backend.body("POST /admin/keys"))
}

func TestKeysCreate_InvalidDuration(t *testing.T) {
	e := newEnv(t).signedIn()

	code, _, stderr := e.run("", "keys", "create", "--name", "k", "--expiration", "duration", "--days", "0")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: ")
	assert.False(t, e.backend.saw("POST /admin/keys"))
}

func TestKeysRenew(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, stderr := e.run("", "keys", "renew", "1", "--days", "14")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "API key renewed successfully!")
	assert.Equal(t, map[string]any{"expiration_type": "duration", "duration_days": float64(14)},
		e.backend.body("PATCH /admin/keys/1/renew"))
}

func TestKeysRenew_PromptCancelled(t *testing.T) {
	e := newEnv(t).signedIn()

	code, _, stderr := e.run("", "keys", "renew", "1")

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Cancelled.")
	assert.False(t, e.backend.saw("PATCH /admin/keys/1/renew"))
}

func TestKeysRenew_NotPositive(t *testing.T) {
	e := newEnv(t).signedIn()

	code, _, stderr := e.run("", "keys", "renew", "1", "--days", "-3")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Failed to renew key")
	assert.False(t, e.backend.saw("PATCH /admin/keys/1/renew"))
}

func TestKeysDelete_Declined(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, stderr := e.run("n\n", "keys", "delete", "1")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Are you sure you want to delete this API key? [y/N]")
	assert.Contains(t, stderr, "Cancelled.")
	assert.False(t, e.backend.saw("DELETE /admin/keys/1"))
}

func TestKeysDelete_Confirmed(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, _ := e.run("", "keys", "delete", "1", "--yes")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "API key deleted successfully!")
	assert.True(t, e.backend.saw("DELETE /admin/keys/1"))
}

func TestKeysToggle(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, _ := e.run("", "keys", "toggle", "1")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "API key status updated!")
	assert.True(t, e.backend.saw("PATCH /admin/keys/1/toggle"))
}

func TestKeysCopy(t *testing.T) {
	e := newEnv(t).signedIn()

	code, stdout, _ := e.run("", "keys", "copy", "1")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "API key copied to clipboard!")
	assert.Equal(t, "sk-secret", e.clip.text)
}

func TestInvalidID(t *testing.T) {
	e := newEnv(t).signedIn()

	code, _, stderr := e.run("", "keys", "toggle", "abc")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `Error: invalid ID "abc"`)
	assert.False(t, e.backend.saw("PATCH /admin/keys/abc/toggle"))
}

func TestDetect(t *testing.T) {
	e := newEnv(t).signedIn()
	image := filepath.Join(t.TempDir(), "cat.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg"), 0o600))

	code, stdout, stderr := e.run("", "detect", "--key", "1", image)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "\"detections\": []")
	assert.True(t, e.backend.saw("GET /admin/keys/1"))
}

func TestDetect_NoKeySelected(t *testing.T) {
	e := newEnv(t).signedIn()
	image := filepath.Join(t.TempDir(), "cat.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg"), 0o600))

	code, _, stderr := e.run("", "detect", image)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Please select API key and image file")
	assert.False(t, e.backend.saw("POST /api/v1/detect"))
}

func TestModelsUpload_RejectsNonPT(t *testing.T) {
	e := newEnv(t).signedIn()
	file := filepath.Join(t.TempDir(), "weights.onnx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	code, _, stderr := e.run("", "models", "upload", file)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, ".pt")
	assert.False(t, e.backend.saw("POST /admin/models/upload"))
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t)

	code, _, stderr := e.run("", "status", "--http-timeout", "soon")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: ")
}

func TestPing(t *testing.T) {
	e := newEnv(t)

	code, stdout, stderr := e.run("", "ping")

	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "captcha-detector at http://localhost:8000 is up.")
}

func TestDashboard_HTMLReport(t *testing.T) {
	e := newEnv(t).signedIn()
	path := filepath.Join(t.TempDir(), "dash.html")

	code, stdout, stderr := e.run("", "dashboard", "--html", path)

	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	page, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(page), "ci-runner")
	assert.NotContains(t, string(page), "sk-secret")
}

func TestModelsDownload(t *testing.T) {
	e := newEnv(t).signedIn()
	path := filepath.Join(t.TempDir(), "best.pt")

	code, _, stderr := e.run("", "models", "download", "1", "-o", path)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "Saved "+path+" (7 B).")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "weights", string(data))
}

func TestModelsDownload_FailureLeavesNoFile(t *testing.T) {
	e := newEnv(t).signedIn()
	path := filepath.Join(t.TempDir(), "missing.pt")

	code, _, stderr := e.run("", "models", "download", "2", "-o", path)

	assert.Equal(t, 1, code)
	assert.NotContains(t, stderr, "Saved")
	assert.NoFileExists(t, path)
}
