package menupdf

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-menupdf/internal/process"
)

// launchFunc starts a browser and returns it with a function that releases
// every resource the launch acquired.
type launchFunc func() (*rod.Browser, func() error, error)

// browserLoader lazily launches one headless browser and shares it.
// Concurrent first callers wait on the same launch; a failed launch leaves
// the loader unloaded so the next call retries.
type browserLoader struct {
	launch launchFunc
	group  singleflight.Group

	mu      sync.Mutex
	browser *rod.Browser
	release func() error
	closed  bool
}

func newBrowserLoader() *browserLoader {
	return &browserLoader{launch: launchChrome}
}

// Get returns the shared browser, launching it if needed.
// ctx bounds the wait, not the launch itself, which other callers may share.
func (l *browserLoader) Get(ctx context.Context) (*rod.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b, err := l.loaded(); b != nil || err != nil {
		return b, err
	}

	ch := l.group.DoChan("browser", func() (any, error) {
		if b, err := l.loaded(); b != nil || err != nil {
			return b, err
		}

		b, release, err := l.launch()
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed {
			_ = release()
			return nil, fmt.Errorf("%w: exporter closed", ErrBrowserConnect)
		}
		l.browser, l.release = b, release
		return b, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*rod.Browser), nil
	}
}

func (l *browserLoader) loaded() (*rod.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, fmt.Errorf("%w: exporter closed", ErrBrowserConnect)
	}
	return l.browser, nil
}

// Close releases the browser if one was launched. Later calls to Get fail.
func (l *browserLoader) Close() error {
	l.mu.Lock()
	release := l.release
	l.browser, l.release, l.closed = nil, nil, true
	l.mu.Unlock()

	if release != nil {
		return release()
	}
	return nil
}

// launchChrome starts headless Chrome through the rod launcher.
// Rod downloads Chromium on first run if none is found.
func launchChrome() (*rod.Browser, func() error, error) {
	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	kill := func() {
		if pid := l.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		l.Kill()
		l.Cleanup()
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		kill()
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	release := func() error {
		err := b.Close()
		kill()
		return err
	}
	return b, release, nil
}
