// Package browser owns the Chrome instance driven by the collector.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"ecocap/internal/config"
	"ecocap/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// ErrNotStarted is returned when a page is requested before Start.
var ErrNotStarted = errors.New("browser not started")

const (
	defaultWidth      = 1920
	defaultHeight     = 1080
	defaultNavTimeout = 30 * time.Second
)

// Session status values.
const (
	StatusActive  = "active"  // opened by CreateSession
	StatusAdopted = "adopted" // opened by the portal, e.g. a target=_blank click
)

// Session describes a tracked portal tab.
type Session struct {
	ID         string
	URL        string
	Status     string
	CreatedAt  time.Time
	LastActive time.Time
}

type tab struct {
	meta Session
	page *rod.Page
}

// Counters reports tab usage over the life of a manager.
type Counters struct {
	Opened   int
	Released int
}

// SessionManager owns the Chrome process, or a connection to a running one,
// and the portal tabs opened in it. The profile directory keeps the portal
// login across runs.
type SessionManager struct {
	cfg config.BrowserConfig

	mu       sync.RWMutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	tabs     map[string]*tab
	counters Counters
}

// NewSessionManager creates a session manager. Chrome starts on Start.
func NewSessionManager(cfg config.BrowserConfig) *SessionManager {
	return &SessionManager{cfg: cfg, tabs: make(map[string]*tab)}
}

func (m *SessionManager) viewport() (int, int) {
	w, h := m.cfg.ViewportWidth, m.cfg.ViewportHeight
	if w == 0 {
		w = defaultWidth
	}
	if h == 0 {
		h = defaultHeight
	}
	return w, h
}

// NavigationTimeout bounds page loads and element lookups.
func (m *SessionManager) NavigationTimeout() time.Duration {
	if m.cfg.NavigationTimeoutMs == 0 {
		return defaultNavTimeout
	}
	return time.Duration(m.cfg.NavigationTimeoutMs) * time.Millisecond
}

// launch starts a local Chrome and returns its control URL.
func (m *SessionManager) launch() (string, error) {
	l := launcher.New().
		Headless(m.cfg.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}
	if m.cfg.UserDataDir != "" {
		if err := os.MkdirAll(m.cfg.UserDataDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create chrome profile dir: %w", err)
		}
		l = l.UserDataDir(m.cfg.UserDataDir)
	}
	url, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch chrome: %w", err)
	}
	m.launcher = l
	logging.Browser("Launched Chrome (headless=%v, profile=%s)", m.cfg.Headless, m.cfg.UserDataDir)
	return url, nil
}

// Start attaches to DebuggerURL when set, otherwise launches Chrome. Calling
// it again on a live connection does nothing.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return nil
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" {
		url, err := m.launch()
		if err != nil {
			return err
		}
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("failed to connect to chrome: %w", err)
	}
	m.browser = b
	logging.BrowserDebug("Connected to %s", controlURL)
	return nil
}

// Shutdown closes every tab and the browser. A launched Chrome is killed; an
// attached one is only disconnected.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.tabs {
		_ = t.page.Close()
		delete(m.tabs, id)
		m.counters.Released++
	}

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.launcher.Kill()
		m.launcher = nil
	}
	logging.BrowserDebug("Browser shut down after %d tabs", m.counters.Opened)
	return err
}

// Counters returns the tab usage so far.
func (m *SessionManager) Counters() Counters {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters
}

// track registers page under a new session ID.
func (m *SessionManager) track(page *rod.Page, url, status string) Session {
	now := time.Now()
	meta := Session{
		ID:         uuid.NewString(),
		URL:        url,
		Status:     status,
		CreatedAt:  now,
		LastActive: now,
	}
	m.mu.Lock()
	m.tabs[meta.ID] = &tab{meta: meta, page: page}
	m.counters.Opened++
	m.mu.Unlock()
	return meta
}

// CreateSession opens a tab on url in the default browser context, so the
// profile's cookies apply. A slow page is logged, not failed: the portal keeps
// long-polling connections open.
func (m *SessionManager) CreateSession(ctx context.Context, url string) (*Session, error) {
	m.mu.RLock()
	b := m.browser
	m.mu.RUnlock()
	if b == nil {
		return nil, ErrNotStarted
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	width, height := m.viewport()
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}).Call(page); err != nil {
		logging.BrowserWarn("Failed to set viewport: %v", err)
	}

	if err := page.Context(ctx).Timeout(m.NavigationTimeout()).Navigate(url); err != nil {
		logging.BrowserWarn("Navigation to %s did not finish: %v", url, err)
	}

	meta := m.track(page, url, StatusActive)
	logging.Browser("Session %s opened on %s", meta.ID, url)
	return &meta, nil
}

// Adopt tracks a tab the portal opened on its own.
func (m *SessionManager) Adopt(page *rod.Page, url string) Session {
	meta := m.track(page, url, StatusAdopted)
	logging.BrowserDebug("Adopted tab %s as session %s", page.TargetID, meta.ID)
	return meta
}

// Release closes a session's tab. Unknown IDs are ignored.
func (m *SessionManager) Release(sessionID string) error {
	m.mu.Lock()
	t, ok := m.tabs[sessionID]
	if ok {
		delete(m.tabs, sessionID)
		m.counters.Released++
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return t.page.Close()
}

// Page returns the rod page of a session.
func (m *SessionManager) Page(sessionID string) (*rod.Page, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tabs[sessionID]
	if !ok {
		return nil, false
	}
	return t.page, true
}

// GetSession returns session metadata.
func (m *SessionManager) GetSession(sessionID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tabs[sessionID]
	if !ok {
		return Session{}, false
	}
	return t.meta, true
}

// touch records activity on a session, and its new URL when url is not empty.
func (m *SessionManager) touch(sessionID, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tabs[sessionID]; ok {
		t.meta.LastActive = time.Now()
		if url != "" {
			t.meta.URL = url
		}
	}
}

// Navigate loads url in a session's tab.
func (m *SessionManager) Navigate(ctx context.Context, sessionID, url string) error {
	page, ok := m.Page(sessionID)
	if !ok {
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	if err := page.Context(ctx).Timeout(m.NavigationTimeout()).Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	m.touch(sessionID, url)
	return nil
}

// element finds the first element matching selector in a session's tab.
func (m *SessionManager) element(ctx context.Context, sessionID, selector string) (*rod.Element, error) {
	page, ok := m.Page(sessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}
	el, err := page.Context(ctx).Timeout(m.NavigationTimeout()).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element %s not found: %w", selector, err)
	}
	m.touch(sessionID, "")
	return el, nil
}

// Click clicks the first element matching selector.
func (m *SessionManager) Click(ctx context.Context, sessionID, selector string) error {
	el, err := m.element(ctx, sessionID, selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// Type replaces the text of the input matching selector.
func (m *SessionManager) Type(ctx context.Context, sessionID, selector, text string) error {
	el, err := m.element(ctx, sessionID, selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to select %s: %w", selector, err)
	}
	return el.Input(text)
}
