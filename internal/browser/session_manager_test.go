package browser

import (
	"context"
	"testing"
	"time"

	"ecocap/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_Defaults(t *testing.T) {
	sm := NewSessionManager(config.BrowserConfig{})
	w, h := sm.viewport()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
	assert.Equal(t, 30*time.Second, sm.NavigationTimeout())

	sm = NewSessionManager(config.BrowserConfig{ViewportWidth: 800, ViewportHeight: 600, NavigationTimeoutMs: 1500})
	w, h = sm.viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, 1500*time.Millisecond, sm.NavigationTimeout())
}

func TestSessionManager_UnknownSession(t *testing.T) {
	sm := NewSessionManager(config.DefaultBrowserConfig())
	assert.Equal(t, Counters{}, sm.Counters())

	_, ok := sm.GetSession("nope")
	assert.False(t, ok)
	_, ok = sm.Page("nope")
	assert.False(t, ok)
	require.NoError(t, sm.Release("nope"))

	err := sm.Click(context.Background(), "nope", "#b")
	assert.ErrorContains(t, err, "unknown session")
	err = sm.Type(context.Background(), "nope", "#q", "x")
	assert.ErrorContains(t, err, "unknown session")

	err = sm.Navigate(context.Background(), "nope", "about:blank")
	assert.ErrorContains(t, err, "unknown session")

	_, err = sm.CreateSession(context.Background(), "about:blank")
	assert.ErrorIs(t, err, ErrNotStarted)

	// Shutting down a manager that never started is a no-op.
	require.NoError(t, sm.Shutdown(context.Background()))
}
