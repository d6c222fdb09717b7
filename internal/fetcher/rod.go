package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Rod renders pages in headless Chrome, for listings built client side.
type Rod struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	logger   *slog.Logger
}

// NewRod launches a headless browser. Close must be called when done.
func NewRod(logger *slog.Logger) (*Rod, error) {
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &Rod{browser: browser, launcher: l, logger: logger}, nil
}

// Fetch navigates to rawURL and returns the rendered HTML.
func (f *Rod) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Navigate(rawURL); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}
	f.logger.Debug("rendered page", "url", rawURL, "bytes", len(html))
	return html, nil
}

// Close shuts the browser down.
func (f *Rod) Close() error {
	err := f.browser.Close()
	f.launcher.Kill()
	return err
}
