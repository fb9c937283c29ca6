// ABOUTME: Tests for the per-identity session registry
// ABOUTME: Covers lookup, replacement, expiry, and concurrent access

package bot

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_PutGetDelete(t *testing.T) {
	r := NewSessionRegistry(time.Minute)
	defer r.Close()

	assert.Nil(t, r.Get("@u:example.org"))

	r.Put(&Session{UserID: "@u:example.org", State: StateAwaitingReady})

	sess := r.Get("@u:example.org")
	require.NotNil(t, sess)
	assert.Equal(t, StateAwaitingReady, sess.State)
	assert.Equal(t, 1, r.Len())

	r.Delete("@u:example.org")
	assert.Nil(t, r.Get("@u:example.org"))
	assert.Equal(t, 0, r.Len())
}

func TestSessionRegistry_PutReplaces(t *testing.T) {
	r := NewSessionRegistry(time.Minute)
	defer r.Close()

	r.Put(&Session{UserID: "@u:example.org", State: StateAwaitingReady})
	r.Put(&Session{UserID: "@u:example.org", State: StateAwaitingResetConfirm})

	sess := r.Get("@u:example.org")
	require.NotNil(t, sess)
	assert.Equal(t, StateAwaitingResetConfirm, sess.State)
	assert.Equal(t, 1, r.Len())
}

func TestSessionRegistry_ExpiredSessionNotReturned(t *testing.T) {
	r := NewSessionRegistry(10 * time.Millisecond)
	defer r.Close()

	r.Put(&Session{UserID: "@u:example.org", State: StateAwaitingReady})
	time.Sleep(30 * time.Millisecond)

	assert.Nil(t, r.Get("@u:example.org"), "expired session must read as absent")
}

func TestSessionRegistry_GetRefreshesActivity(t *testing.T) {
	r := NewSessionRegistry(50 * time.Millisecond)
	defer r.Close()

	r.Put(&Session{UserID: "@u:example.org", State: StateAwaitingReady})

	// Keep touching the session past its original TTL
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		require.NotNil(t, r.Get("@u:example.org"), "active session must not expire")
	}
}

func TestSessionRegistry_RunCleanup(t *testing.T) {
	r := NewSessionRegistry(10 * time.Millisecond)
	defer r.Close()

	r.Put(&Session{UserID: "@a:example.org"})
	r.Put(&Session{UserID: "@b:example.org"})
	time.Sleep(30 * time.Millisecond)

	r.runCleanup()
	assert.Equal(t, 0, r.Len())
}

func TestSessionRegistry_ConcurrentAccess(t *testing.T) {
	r := NewSessionRegistry(time.Minute)
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a'+n)) + ":example.org"
			r.Put(&Session{UserID: id, State: StateAwaitingReady})
			r.Get(id)
			r.Delete(id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}

func TestSessionRegistry_CloseIsIdempotent(t *testing.T) {
	r := NewSessionRegistry(time.Minute)
	r.Close()
	r.Close()
}
