package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"course-scraper/internal/normalize"
	"course-scraper/internal/observability"
)

type ImageOptions struct {
	Selectors   []string
	SizeFrom    string
	SizeTo      string
	MaxAttempts int
	ScrollDelay time.Duration
	// Backoff — пауза перед попыткой attempt (с 1)
	Backoff func(attempt int) time.Duration
}

// ImageResolver дожидается настоящего src у картинки карточки и сохраняет её
type ImageResolver struct {
	scroller   *Scroller
	downloader Downloader
	store      ImageStore
	opts       ImageOptions
	logger     *observability.Logger
}

func NewImageResolver(scroller *Scroller, downloader Downloader, store ImageStore, opts ImageOptions, logger *observability.Logger) *ImageResolver {
	if opts.Backoff == nil {
		opts.Backoff = func(int) time.Duration { return 0 }
	}
	return &ImageResolver{
		scroller:   scroller,
		downloader: downloader,
		store:      store,
		opts:       opts,
		logger:     logger,
	}
}

// ResolveAndStore возвращает имя сохранённого файла.
// Ошибка скачивания фатальна; неразрешённый src — ErrImageUnresolved.
func (r *ImageResolver) ResolveAndStore(ctx context.Context, card Card, initialURL string) (string, error) {
	src, err := r.waitForSource(ctx, card, initialURL)
	if err != nil {
		return "", err
	}

	fetchURL, name, err := normalize.ImageURL(src, r.opts.SizeFrom, r.opts.SizeTo)
	if err != nil {
		return "", err
	}

	data, err := r.downloader.Download(ctx, fetchURL)
	if err != nil {
		return "", fmt.Errorf("download image %s: %w", fetchURL, err)
	}

	if err := r.store.Save(name, data); err != nil {
		return "", fmt.Errorf("store image %s: %w", name, err)
	}

	r.logger.Debug("Image stored", "url", fetchURL, "name", name, "bytes", len(data))
	return name, nil
}

func (r *ImageResolver) waitForSource(ctx context.Context, card Card, src string) (string, error) {
	for attempt := 1; !normalize.IsAbsoluteURL(src); attempt++ {
		if attempt > r.opts.MaxAttempts {
			r.logger.Warn("Image source never resolved",
				"attempts", r.opts.MaxAttempts,
				"last_src", truncate(src, 80),
			)
			return "", fmt.Errorf("%w after %d attempts", ErrImageUnresolved, r.opts.MaxAttempts)
		}

		if err := sleep(ctx, r.opts.Backoff(attempt)); err != nil {
			return "", err
		}

		// Картинка грузится лениво: прокручиваем страницу целиком заново
		if err := r.scroller.Cycle(ctx, r.opts.ScrollDelay); err != nil {
			if !errors.Is(err, ErrScrollExhausted) {
				return "", err
			}
			r.logger.Warn("Scroll cycle did not settle", "attempt", attempt)
		}

		next, err := readProperty(ctx, card, r.opts.Selectors, "src")
		if err != nil {
			return "", fmt.Errorf("read image src: %w", err)
		}
		src = next
	}
	return src, nil
}

func readProperty(ctx context.Context, card Card, selectors []string, name string) (string, error) {
	for _, selector := range selectors {
		value, err := card.Property(ctx, selector, name)
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
	}
	return "", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
