package echoui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/browser"
	"go.uber.org/zap"

	"github.com/petasbytes/sidekick/internal/fallback"
)

const shutdownTimeout = 5 * time.Second

// Launcher serves a UI under one Variant at a time.
type Launcher struct {
	UI     *UI
	Out    io.Writer
	Logger *zap.Logger

	// OpenBrowser opens the page BrowserDelay after a successful bind.
	OpenBrowser  bool
	BrowserDelay time.Duration

	// Listen and OpenURL default to net.Listen and browser.OpenURL.
	Listen  func(network, addr string) (net.Listener, error)
	OpenURL func(url string) error

	mu sync.Mutex // guards Out
}

func (l *Launcher) printf(format string, a ...any) {
	if l.Out == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.Out, format, a...)
}

func (l *Launcher) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// Launch binds v's address and serves until ctx is done. A bind failure is
// returned immediately and nothing else is started.
func (l *Launcher) Launch(ctx context.Context, v Variant) error {
	listen := l.Listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := bindFirst(listen, v)
	if err != nil {
		return err
	}
	url := "http://" + ln.Addr().String()
	log := l.logger().With(zap.String("variant", v.Name), zap.String("url", url))
	log.Info("ui listening")
	if !v.Quiet {
		l.printf("Running on local URL:  %s\n", url)
	}
	if l.OpenBrowser {
		l.openLater(url, log)
	}

	srv := &http.Server{Handler: l.UI.Handler(v), ReadHeaderTimeout: 10 * time.Second}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	select {
	case err := <-served:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("ui shutdown", zap.Error(err))
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("ui stopped")
	return nil
}

// bindFirst tries each address of v in order, the way a plain launch
// scans upward from its default port.
func bindFirst(listen func(network, addr string) (net.Listener, error), v Variant) (net.Listener, error) {
	addrs := v.Addrs()
	var err error
	for _, addr := range addrs {
		var ln net.Listener
		if ln, err = listen("tcp", addr); err == nil {
			return ln, nil
		}
	}
	if len(addrs) == 1 {
		return nil, fmt.Errorf("bind %s: %w", addrs[0], err)
	}
	return nil, fmt.Errorf("bind %s (ports %d-%d): %w", v.Host, v.Port, v.Port+len(addrs)-1, err)
}

// openLater starts the single background browser task. It is not
// cancelled and its failure is only reported.
func (l *Launcher) openLater(url string, log *zap.Logger) {
	open := l.OpenURL
	if open == nil {
		open = browser.OpenURL
	}
	delay := l.BrowserDelay
	go func() {
		time.Sleep(delay)
		if err := open(url); err != nil {
			log.Warn("open browser", zap.Error(err))
			l.printf("Could not open the browser: %v\n", err)
			return
		}
		l.printf("Browser opened: %s\n", url)
	}()
}

// Run tries each variant in order and serves the first one that binds.
// When every variant fails the remediation checklist is written to Out
// and the error wraps fallback.ErrExhausted.
func (l *Launcher) Run(ctx context.Context, plan []Variant) (Variant, error) {
	attempt := func(ctx context.Context, v Variant) error {
		l.printf("\nTrying launch method: %s\n", v.Name)
		l.printf("Server address: %s\n", v.URL())
		return l.Launch(ctx, v)
	}
	report := func(v Variant, err error) {
		l.logger().Warn("launch failed", zap.String("variant", v.Name), zap.Error(err))
		l.printf("Launch failed: %v\n", err)
	}
	used, err := fallback.Try(ctx, plan, attempt, report)
	if err != nil && ctx.Err() == nil {
		l.logger().Error("all launch methods failed", zap.Error(err))
		l.printf("\n%s", Remediation)
	}
	return used, err
}
