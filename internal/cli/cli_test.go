package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sethvargo/go-envconfig"

	"github.com/usermgmt/admin-console/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Fake backend
// ---------------------------------------------------------------------------

type fakeBackend struct {
	t *testing.T

	mu      sync.Mutex
	deletes []string
	auth    []string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/user/login":
		var creds domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"httpStatusCode": 400,
				"message":        "USERNAME / PASSWORD INCORRECT. PLEASE TRY AGAIN",
			})
			return
		}
		w.Header().Set("Jwt-Token", f.token(creds.Username))
		writeJSON(w, http.StatusOK, map[string]any{
			"username":  creds.Username,
			"firstName": "Ada",
			"lastName":  "Lovelace",
			"role":      "ROLE_ADMIN",
		})

	case r.Method == http.MethodGet && r.URL.Path == "/user/list":
		writeJSON(w, http.StatusOK, []map[string]any{
			{"userId": "u1", "username": "ada", "firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "role": "ROLE_ADMIN", "active": true, "notLocked": true},
			{"userId": "u2", "username": "cbab", "firstName": "Charles", "lastName": "Babbage", "email": "cb@example.com", "role": "ROLE_USER", "active": true, "notLocked": true},
		})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/user/delete/"):
		f.mu.Lock()
		f.deletes = append(f.deletes, strings.TrimPrefix(r.URL.Path, "/user/delete/"))
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "There is no mapping for this URL"})
	}
}

func (f *fakeBackend) token(subject string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		f.t.Fatalf("sign: %v", err)
	}
	return tok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type console struct {
	t   *testing.T
	env map[string]string
}

func newConsole(t *testing.T, backend http.Handler) *console {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	return &console{t: t, env: map[string]string{
		"CONSOLE_ENV":  "test",
		"LOG_LEVEL":    "error",
		"API_URL":      srv.URL,
		"STORE_DRIVER": "file",
		"STORE_PATH":   filepath.Join(t.TempDir(), "session.json"),
		"STORE_SECRET": "correct horse battery staple",
	}}
}

func (c *console) run(args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), args, &out, WithLookuper(envconfig.MapLookuper(c.env)))
	return out.String(), err
}

func (c *console) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("console %s: %v\noutput: %s", strings.Join(args, " "), err, out)
	}
	return out
}

func assertContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("output %q does not contain %q", out, want)
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLoginStatusLogout(t *testing.T) {
	c := newConsole(t, &fakeBackend{t: t})

	assertContains(t, c.mustRun("status"), "Not logged in")

	out := c.mustRun("login", "-u", "ada", "-p", "secret")
	assertContains(t, out, "Logged in as ada (ROLE_ADMIN)")

	// A new invocation reads the session back from the sealed file.
	assertContains(t, c.mustRun("status"), "Logged in as ada (Ada Lovelace, ROLE_ADMIN)")

	assertContains(t, c.mustRun("logout"), "[SUCCESS] You've been successfully logged out")
	assertContains(t, c.mustRun("status"), "Not logged in")
}

func TestLogin_BackendRejects(t *testing.T) {
	c := newConsole(t, &fakeBackend{t: t})

	out, err := c.run("login", "-u", "ada", "-p", "wrong")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected a reported error, got %v", err)
	}
	assertContains(t, out, "[ERROR] USERNAME / PASSWORD INCORRECT. PLEASE TRY AGAIN")
}

func TestUsers_RequireSession(t *testing.T) {
	c := newConsole(t, &fakeBackend{t: t})

	out, err := c.run("users", "list")
	if !errors.Is(err, errSessionRequired) {
		t.Fatalf("expected errSessionRequired, got %v", err)
	}
	assertContains(t, out, "[ERROR] "+domain.MsgLoginRequired)
}

func TestUsers_ListSearchDelete(t *testing.T) {
	backend := &fakeBackend{t: t}
	c := newConsole(t, backend)
	c.mustRun("login", "-u", "ada", "-p", "secret")

	out := c.mustRun("users", "list", "--refresh")
	assertContains(t, out, "[SUCCESS] 2 user(s) loaded successfully.")
	assertContains(t, out, "cbab")
	assertContains(t, out, "Charles Babbage")

	// Search works offline on the snapshot written by the refresh.
	out = c.mustRun("users", "search", "BABBAGE")
	assertContains(t, out, "cbab")
	if strings.Contains(out, "ada@example.com") {
		t.Fatalf("search should not list ada: %q", out)
	}

	out = c.mustRun("users", "delete", "cbab")
	assertContains(t, out, "[SUCCESS] User deleted successfully")

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.deletes) != 1 || backend.deletes[0] != "cbab" {
		t.Fatalf("unexpected deletes %v", backend.deletes)
	}
	last := backend.auth[len(backend.auth)-1]
	if !strings.HasPrefix(last, "Bearer ") {
		t.Fatalf("expected a bearer token on authenticated calls, got %q", last)
	}
	if backend.auth[0] != "" {
		t.Fatalf("login must not carry a token, got %q", backend.auth[0])
	}
}

func TestUsers_AddRejectsUnknownRole(t *testing.T) {
	c := newConsole(t, &fakeBackend{t: t})
	c.mustRun("login", "-u", "ada", "-p", "secret")

	_, err := c.run("users", "add", "--first-name", "Grace", "--last-name", "Hopper",
		"-u", "ghopper", "--email", "grace@navy.mil", "--role", "CAPTAIN")
	if err == nil || !strings.Contains(err.Error(), "unknown role") {
		t.Fatalf("expected unknown role error, got %v", err)
	}
}

func TestConfigError(t *testing.T) {
	c := newConsole(t, &fakeBackend{t: t})
	c.env["STORE_DRIVER"] = "floppy"

	if _, err := c.run("status"); err == nil {
		t.Fatalf("expected a config error")
	}
}

func TestPrinter(t *testing.T) {
	var out bytes.Buffer
	p := newPrinter(&out)
	p.Notify(domain.NewNotification(domain.NotificationWarning, "careful"))
	p.Notify(domain.NewNotification(domain.NotificationError, ""))

	want := "[WARNING] careful\n[ERROR] " + domain.GenericErrorMessage + "\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}
