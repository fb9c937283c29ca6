// ABOUTME: Tests for the Mail-in-a-Box admin API client
// ABOUTME: Covers existence checks, provisioning calls, auth, and error propagation

package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userListing = `[
	{"domain": "example.com", "users": [
		{"email": "ada.lovelace@example.com", "status": "active"},
		{"email": "grace.hopper@example.com", "status": "active"}
	]},
	{"domain": "other.org", "users": [
		{"email": "ada.lovelace@other.org", "status": "active"}
	]}
]`

// newTestClient points a client at a test server.
func newTestClient(srv *httptest.Server) *Client {
	c := New("box.example.com", "admin@example.com", "hunter2", 5*time.Second, nil)
	c.baseURL = srv.URL
	return c
}

func TestExists_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/mail/users", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "expected basic auth")
		assert.Equal(t, "admin@example.com", user)
		assert.Equal(t, "hunter2", pass)

		w.Write([]byte(userListing))
	}))
	defer srv.Close()

	c := newTestClient(srv)

	exists, err := c.Exists(context.Background(), "ada.lovelace@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExists_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(userListing))
	}))
	defer srv.Close()

	c := newTestClient(srv)

	exists, err := c.Exists(context.Background(), "charles.babbage@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExists_ScopedToDomain(t *testing.T) {
	// The address exists under other.org but is asked for under a domain
	// the directory doesn't know
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(userListing))
	}))
	defer srv.Close()

	c := newTestClient(srv)

	exists, err := c.Exists(context.Background(), "ada.lovelace@unknown.net")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExists_MalformedAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called for a malformed address")
	}))
	defer srv.Close()

	c := newTestClient(srv)

	_, err := c.Exists(context.Background(), "not-an-address")
	assert.Error(t, err)
}

func TestExists_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv)

	_, err := c.Exists(context.Background(), "ada.lovelace@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestExists_ParseErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := newTestClient(srv)

	// A partial or ambiguous directory view must never read as "does not exist"
	_, err := c.Exists(context.Background(), "ada.lovelace@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestCreateAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mail/users/add", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ada.lovelace@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "tr0ub4dor3x", r.PostForm.Get("password"))

		_, _, ok := r.BasicAuth()
		require.True(t, ok, "expected basic auth")

		w.Write([]byte("mail user added\n"))
	}))
	defer srv.Close()

	c := newTestClient(srv)

	msg, err := c.CreateAccount(context.Background(), "ada.lovelace@example.com", "tr0ub4dor3x")
	require.NoError(t, err)
	assert.Equal(t, "mail user added", msg)
}

func TestCreateAccount_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "user already exists", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv)

	_, err := c.CreateAccount(context.Background(), "ada.lovelace@example.com", "pw12345678")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating account")
	assert.Contains(t, err.Error(), "user already exists")
}

func TestSetPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mail/users/password", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ada.lovelace@example.com", r.PostForm.Get("email"))
		assert.NotEmpty(t, r.PostForm.Get("password"))

		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	c := newTestClient(srv)

	msg, err := c.SetPassword(context.Background(), "ada.lovelace@example.com", "n3wp4ssw0rd")
	require.NoError(t, err)
	assert.Equal(t, "OK", msg)
}

func TestSetPassword_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := newTestClient(srv)

	_, err := c.SetPassword(context.Background(), "ada.lovelace@example.com", "n3wp4ssw0rd")
	assert.Error(t, err)
}
