// Package scrapertest содержит in-memory реализации интерфейсов браузера
// для тестов пагинации и извлечения полей.
package scrapertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"course-scraper/internal/scraper"
)

// Card отдаёт фиксированную разметку и последовательности значений свойств.
// Каждое чтение свойства сдвигает последовательность; последнее значение залипает.
type Card struct {
	Markup string
	Props  map[string][]string

	mu    sync.Mutex
	reads map[string]int
}

func NewCard(markup string) *Card {
	return &Card{Markup: markup, Props: map[string][]string{}}
}

// WithProperty задаёт значения, которые вернут последовательные чтения
func (c *Card) WithProperty(selector, name string, values ...string) *Card {
	c.Props[selector+"|"+name] = values
	return c
}

func (c *Card) HTML(ctx context.Context) (string, error) {
	return c.Markup, ctx.Err()
}

func (c *Card) Property(ctx context.Context, selector, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := selector + "|" + name
	values := c.Props[key]
	if len(values) == 0 {
		return "", nil
	}
	if c.reads == nil {
		c.reads = map[string]int{}
	}
	i := c.reads[key]
	c.reads[key]++
	if i >= len(values) {
		i = len(values) - 1
	}
	return values[i], nil
}

// Reads — сколько раз читали свойство
func (c *Card) Reads(selector, name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[selector+"|"+name]
}

// Page моделирует листинг, прокрутку и вторичные вкладки
type Page struct {
	// Listings: URL страницы → карточки. Нет записи — WaitCards отдаёт ErrWaitTimeout.
	Listings map[string][]scraper.Card
	// Breadcrumbs: URL курса → outerHTML крошек. Нет записи — таймаут.
	Breadcrumbs map[string]string

	DocumentHeight float64
	ScreenHeight   float64
	// Endless — страница никогда не заканчивается
	Endless bool

	mu          sync.Mutex
	current     string
	y           float64
	Navigations []string
	TopScrolls  int
	OpenedTabs  int
	ClosedTabs  int
	openTabs    int
	MaxOpenTabs int
}

func NewPage() *Page {
	return &Page{
		Listings:       map[string][]scraper.Card{},
		Breadcrumbs:    map[string]string{},
		DocumentHeight: 3000,
		ScreenHeight:   1000,
	}
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = url
	p.y = 0
	p.Navigations = append(p.Navigations, url)
	return nil
}

func (p *Page) WaitCards(ctx context.Context, _, _ string, timeout time.Duration) ([]scraper.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cards, ok := p.Listings[p.current]
	if !ok || len(cards) == 0 {
		return nil, fmt.Errorf("%w: no cards at %s after %s", scraper.ErrWaitTimeout, p.current, timeout)
	}
	return cards, nil
}

func (p *Page) ScrollY(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.y, ctx.Err()
}

func (p *Page) ScrollToTop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.y = 0
	p.TopScrolls++
	return ctx.Err()
}

func (p *Page) ScrollByScreen(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.y += p.ScreenHeight
	if !p.Endless {
		if bottom := p.DocumentHeight - p.ScreenHeight; p.y > bottom {
			p.y = bottom
		}
		if p.y < 0 {
			p.y = 0
		}
	}
	return ctx.Err()
}

func (p *Page) OpenTab(ctx context.Context, url string) (scraper.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.OpenedTabs++
	p.openTabs++
	if p.openTabs > p.MaxOpenTabs {
		p.MaxOpenTabs = p.openTabs
	}
	html, ok := p.Breadcrumbs[url]
	return &tab{page: p, url: url, html: html, found: ok}, nil
}

// OpenTabsNow — сколько вкладок сейчас не закрыто
func (p *Page) OpenTabsNow() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.openTabs
}

type tab struct {
	page   *Page
	url    string
	html   string
	found  bool
	closed bool
}

func (t *tab) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !t.found {
		return "", fmt.Errorf("%w: %s at %s after %s", scraper.ErrWaitTimeout, selector, t.url, timeout)
	}
	return t.html, nil
}

func (t *tab) Close() error {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	if t.closed {
		return fmt.Errorf("tab %s closed twice", t.url)
	}
	t.closed = true
	t.page.ClosedTabs++
	t.page.openTabs--
	return nil
}

// Downloader отдаёт байты по URL и запоминает запросы
type Downloader struct {
	Err error

	mu   sync.Mutex
	URLs []string
}

func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.URLs = append(d.URLs, url)
	if d.Err != nil {
		return nil, d.Err
	}
	return []byte("image:" + url), nil
}

// Store хранит картинки в памяти
type Store struct {
	mu     sync.Mutex
	Images map[string][]byte
}

func NewStore() *Store {
	return &Store{Images: map[string][]byte{}}
}

func (s *Store) Save(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Images[name] = data
	return nil
}
