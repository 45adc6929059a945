// Package browser drives headless Chrome through go-rod: it owns the
// browser process, opens the recommender page as a live surface, and
// rasterizes regions.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog"
)

// Sentinel errors for browser operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrNotConnected   = errors.New("browser not connected")
	ErrClosed         = errors.New("browser manager closed")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScreenshot     = errors.New("failed to capture screenshot")
	ErrUnsupported    = errors.New("region cannot be captured")
)

// DefaultTimeout bounds page loads and captures.
const DefaultTimeout = 30 * time.Second

// Config configures the Manager.
type Config struct {
	// Bin is the Chrome executable. Empty uses ROD_BROWSER_BIN, then rod's lookup.
	Bin string
	// NoSandbox disables the Chrome sandbox. It is forced on in CI and when
	// a pre-installed browser is used.
	NoSandbox bool
	// RemoteURL is the DevTools WebSocket URL of an existing Chrome.
	// Empty launches a local one.
	RemoteURL string
	// Timeout bounds page loads and captures.
	Timeout time.Duration
	// ViewportWidth is the CSS width pages are laid out at.
	ViewportWidth int

	Logger zerolog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1024
	}
	if c.Bin == "" {
		c.Bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if os.Getenv("CI") == "true" || c.Bin != "" {
		c.NoSandbox = true
	}
}

// Manager owns one browser connection. It satisfies the capability loader
// contract: Available reports an existing connection and Load establishes one.
type Manager struct {
	cfg Config

	mu      sync.RWMutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a Manager. No browser is started until Load.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Available reports whether a browser is already connected.
func (m *Manager) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Load launches or connects to Chrome. It is a no-op when connected.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.browser != nil {
		return nil
	}

	b, err := m.launch(ctx)
	if err != nil {
		return err
	}
	m.browser = b
	return nil
}

// Browser returns the connected browser.
func (m *Manager) Browser() (*rod.Browser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.browser == nil {
		return nil, ErrNotConnected
	}
	return m.browser, nil
}

// Timeout returns the configured operation timeout.
func (m *Manager) Timeout() time.Duration { return m.cfg.Timeout }

// Close shuts the browser down and reaps the launched process tree.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		if pid := m.lnch.PID(); pid > 0 {
			killProcessGroup(pid)
		}
		m.lnch.Kill()
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return err
}

func (m *Manager) launch(ctx context.Context) (*rod.Browser, error) {
	log := m.cfg.Logger

	wsURL := m.cfg.RemoteURL
	if wsURL != "" {
		log.Debug().Str("url", wsURL).Msg("connecting to remote browser")
	} else {
		l := launcher.New().Context(ctx).Headless(true)
		if m.cfg.Bin != "" {
			l = l.Bin(m.cfg.Bin)
		}
		if m.cfg.NoSandbox {
			l = l.NoSandbox(true)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}
		wsURL = u
		m.lnch = l
		log.Debug().Str("url", wsURL).Int("pid", l.PID()).Msg("launched local browser")
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if m.lnch != nil {
			m.lnch.Kill()
			m.lnch = nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return b, nil
}

// LookPath reports the Chrome executable rod would use.
func LookPath() (string, bool) {
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		return bin, true
	}
	return launcher.LookPath()
}
