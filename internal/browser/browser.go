// Package browser реализует интерфейсы scraper поверх go-rod (Chrome DevTools Protocol).
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"course-scraper/internal/config"
	"course-scraper/internal/observability"
)

// Browser владеет процессом Chrome и соединением с ним
type Browser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	logger   *observability.Logger
}

func Launch(cfg config.RodConfig, logger *observability.Logger) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.ChromePath != "" {
		l = l.Bin(cfg.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	logger.Info("Browser started", "headless", cfg.Headless, "bin", cfg.ChromePath)

	return &Browser{
		launcher: l,
		browser:  b,
		logger:   logger,
	}, nil
}

// NewPage открывает основную вкладку
func (b *Browser) NewPage(ctx context.Context, userAgent string) (*Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if userAgent != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	return &Page{
		browser: b.browser,
		page:    p.Context(context.Background()),
		logger:  b.logger,
	}, nil
}

func (b *Browser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	b.logger.Info("Browser closed")
	return nil
}

// waitError переводит истёкший локальный таймаут в scraper.ErrWaitTimeout.
// Отмену внешнего контекста пробрасываем как есть.
func waitError(parent context.Context, err error, what string) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%w: %s", errWaitTimeout, what)
	}
	return fmt.Errorf("wait %s: %w", what, err)
}
