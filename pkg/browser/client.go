// Package browser drives a headless browser through Rod (Chrome DevTools Protocol)
// for the WASM test runner and the e2e suite.
package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ProfilePrefix starts the name of every temporary profile directory a Client
// creates. It appears in the browser's command line, so leftover processes
// can be matched on it.
const ProfilePrefix = "wasmharness-profile-"

var (
	// ErrNoBrowser is returned when no executable is configured and none is found on PATH.
	ErrNoBrowser = errors.New("no browser executable configured or found")

	// ErrUnsupportedBrowser is returned for browsers that do not speak CDP.
	ErrUnsupportedBrowser = errors.New("unsupported browser: a Chromium-family browser (chrome, chromium, chrome-headless-shell) is required")
)

// CheckExecutable rejects executables that cannot be driven over CDP.
// Firefox is the one that commonly ends up configured here.
func CheckExecutable(bin string) error {
	name := strings.ToLower(filepath.Base(bin))
	name = strings.TrimSuffix(name, ".exe")
	if name == "firefox" || name == "firefox-bin" {
		return fmt.Errorf("%w: got %s", ErrUnsupportedBrowser, bin)
	}
	return nil
}

// Config configures browser launch options.
type Config struct {
	BinPath  string        // Browser executable; empty means look one up on PATH
	Headless bool          // Run in headless mode (default: true)
	Timeout  time.Duration // Navigation timeout (default: 30s)
}

// DefaultConfig returns sensible defaults for a test run.
func DefaultConfig() Config {
	return Config{
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

// Client owns one launched browser process and the page opened in it.
type Client struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration

	closeOnce sync.Once
	closeErr  error
}

// New launches the configured browser and connects to it.
// The browser is configured with:
//   - Leakless supervision, so the process dies with the runner
//   - No sandbox (for container compatibility)
//   - No GPU
func New(cfg Config) (*Client, error) {
	bin := cfg.BinPath
	if bin == "" {
		path, ok := launcher.LookPath()
		if !ok {
			return nil, ErrNoBrowser
		}
		bin = path
	}
	if err := CheckExecutable(bin); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	profile, err := os.MkdirTemp("", ProfilePrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to create browser profile: %w", err)
	}

	l := launcher.New().
		Bin(bin).
		UserDataDir(profile).
		Headless(cfg.Headless).
		Leakless(true).
		Set("no-sandbox").
		Set("disable-gpu")

	url, err := l.Launch()
	if err != nil {
		os.RemoveAll(profile)
		return nil, fmt.Errorf("failed to launch browser %s: %w", bin, err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Client{
		launcher: l,
		browser:  b,
		timeout:  cfg.Timeout,
	}, nil
}

// Navigate opens a new page at url.
func (c *Client) Navigate(url string) error {
	page, err := c.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	c.page = page

	timed := page.Timeout(c.timeout)
	defer timed.CancelTimeout()

	if err := timed.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until an element matching selector exists and is visible,
// or timeout elapses.
func (c *Client) WaitVisible(selector string, timeout time.Duration) error {
	if c.page == nil {
		return errors.New("no page open, call Navigate first")
	}

	page := c.page.Timeout(timeout)
	defer page.CancelTimeout()

	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("waiting for %s to become visible: %w", selector, err)
	}
	return nil
}

// HasClass reports whether the first element matching selector carries class.
// A missing element reports false.
func (c *Client) HasClass(selector, class string) (bool, error) {
	res, err := c.eval(`(sel, cls) => {
		const el = document.querySelector(sel);
		return el !== null && el.classList.contains(cls);
	}`, selector, class)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// Text returns the textContent of the first element matching selector,
// or "" if there is none.
func (c *Client) Text(selector string) (string, error) {
	res, err := c.eval(`(sel) => {
		const el = document.querySelector(sel);
		return el === null ? "" : (el.textContent || "");
	}`, selector)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (c *Client) eval(js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	if c.page == nil {
		return nil, errors.New("no page open, call Navigate first")
	}
	page := c.page.Timeout(c.timeout)
	defer page.CancelTimeout()

	res, err := page.Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return res, nil
}

// Close closes the browser, kills its process and removes the temporary profile.
// Always call this (via defer) to prevent orphaned browser processes.
// Calls after the first return the first result.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.browser != nil {
			c.closeErr = c.browser.Close()
		}
		if c.launcher != nil {
			c.launcher.Kill()
			c.launcher.Cleanup()
		}
	})
	return c.closeErr
}
