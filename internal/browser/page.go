package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"course-scraper/internal/observability"
	"course-scraper/internal/scraper"
)

var errWaitTimeout = scraper.ErrWaitTimeout

const (
	jsScrollY        = `() => window.scrollY`
	jsScrollToTop    = `() => window.scrollTo(0, 0)`
	jsScrollByScreen = `() => window.scrollBy(0, screen.height)`
)

// Page — основная вкладка, реализует scraper.Page
type Page struct {
	browser *rod.Browser
	page    *rod.Page
	logger  *observability.Logger
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *Page) WaitCards(ctx context.Context, containerSelector, cardSelector string, timeout time.Duration) ([]scraper.Card, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wp := p.page.Context(waitCtx)

	container, err := wp.Element(containerSelector)
	if err != nil {
		return nil, waitError(ctx, err, containerSelector)
	}
	if err := container.WaitVisible(); err != nil {
		return nil, waitError(ctx, err, containerSelector)
	}

	// Element ждёт появления хотя бы одной карточки
	if _, err := wp.Element(cardSelector); err != nil {
		return nil, waitError(ctx, err, cardSelector)
	}

	elements, err := p.page.Context(ctx).Elements(cardSelector)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}

	cards := make([]scraper.Card, 0, len(elements))
	for _, el := range elements {
		if err := el.Context(waitCtx).WaitVisible(); err != nil {
			return nil, waitError(ctx, err, cardSelector)
		}
		cards = append(cards, &Card{el: el})
	}

	p.logger.Debug("Cards visible", "count", len(cards), "selector", cardSelector)
	return cards, nil
}

func (p *Page) ScrollY(ctx context.Context) (float64, error) {
	res, err := p.page.Context(ctx).Eval(jsScrollY)
	if err != nil {
		return 0, fmt.Errorf("eval scrollY: %w", err)
	}
	return res.Value.Num(), nil
}

func (p *Page) ScrollToTop(ctx context.Context) error {
	if _, err := p.page.Context(ctx).Eval(jsScrollToTop); err != nil {
		return fmt.Errorf("eval scrollTo: %w", err)
	}
	return nil
}

func (p *Page) ScrollByScreen(ctx context.Context) error {
	if _, err := p.page.Context(ctx).Eval(jsScrollByScreen); err != nil {
		return fmt.Errorf("eval scrollBy: %w", err)
	}
	return nil
}

func (p *Page) OpenTab(ctx context.Context, url string) (scraper.Tab, error) {
	tp, err := p.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}
	return &Tab{page: tp, parent: p.page}, nil
}

// Close закрывает основную вкладку
func (p *Page) Close() error {
	return p.page.Close()
}

// Tab — вторичная вкладка для страницы курса
type Tab struct {
	page   *rod.Page
	parent *rod.Page
}

func (t *Tab) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	el, err := t.page.Context(waitCtx).Element(selector)
	if err != nil {
		return "", waitError(ctx, err, selector)
	}
	if err := el.WaitVisible(); err != nil {
		return "", waitError(ctx, err, selector)
	}

	html, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("read %s HTML: %w", selector, err)
	}
	return html, nil
}

// Close закрывает вкладку и возвращает фокус основной.
// Контекст не наследуется: закрыть нужно даже после отмены прогона.
func (t *Tab) Close() error {
	closeErr := t.page.Context(context.Background()).Close()
	_, activateErr := t.parent.Context(context.Background()).Activate()
	return errors.Join(closeErr, activateErr)
}

// Card — карточка курса на живой странице
type Card struct {
	el *rod.Element
}

func (c *Card) HTML(ctx context.Context) (string, error) {
	html, err := c.el.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("card HTML: %w", err)
	}
	return html, nil
}

func (c *Card) Property(ctx context.Context, selector, name string) (string, error) {
	// Elements не ждёт появления, в отличие от Element
	els, err := c.el.Context(ctx).Elements(selector)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", selector, err)
	}
	if els.Empty() {
		return "", nil
	}

	value, err := els.First().Property(name)
	if err != nil {
		return "", fmt.Errorf("read %s.%s: %w", selector, name, err)
	}
	return value.Str(), nil
}
