package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"course-scraper/internal/observability"
)

// CategoryResolver открывает страницу курса во второй вкладке и читает
// категорию и подкатегорию из хлебных крошек
type CategoryResolver struct {
	page           Page
	breadcrumb     string
	breadcrumbLink string
	timeout        time.Duration
	logger         *observability.Logger
}

func NewCategoryResolver(page Page, breadcrumb, breadcrumbLink string, timeout time.Duration, logger *observability.Logger) *CategoryResolver {
	return &CategoryResolver{
		page:           page,
		breadcrumb:     breadcrumb,
		breadcrumbLink: breadcrumbLink,
		timeout:        timeout,
		logger:         logger,
	}
}

func (r *CategoryResolver) Resolve(ctx context.Context, permalink string) (CategoryPair, error) {
	var pair CategoryPair

	err := withTab(ctx, r.page, permalink, r.logger, func(tab Tab) error {
		html, err := tab.WaitVisible(ctx, r.breadcrumb, r.timeout)
		if err != nil {
			if errors.Is(err, ErrWaitTimeout) {
				r.logger.Warn("Breadcrumb wait timed out, skipping course",
					"url", permalink,
					"timeout", r.timeout.String(),
				)
				return fmt.Errorf("%w: %s", ErrCategoryTimeout, permalink)
			}
			return fmt.Errorf("wait breadcrumb: %w", err)
		}

		pair, err = parseBreadcrumb(html, r.breadcrumbLink)
		if err != nil {
			return fmt.Errorf("%s: %w", permalink, err)
		}
		return nil
	})

	return pair, err
}

// withTab гарантирует, что вторичная вкладка закрыта ровно один раз на любом пути
func withTab(ctx context.Context, page Page, url string, logger *observability.Logger, fn func(Tab) error) (err error) {
	tab, err := page.OpenTab(ctx, url)
	if err != nil {
		return fmt.Errorf("open tab %s: %w", url, err)
	}

	defer func() {
		if closeErr := tab.Close(); closeErr != nil {
			logger.Error("Failed to close tab", "url", url, "error", closeErr.Error())
			if err == nil {
				err = fmt.Errorf("close tab %s: %w", url, closeErr)
			}
		}
	}()

	return fn(tab)
}

func parseBreadcrumb(html, linkSelector string) (CategoryPair, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return CategoryPair{}, fmt.Errorf("failed to parse breadcrumb HTML: %w", err)
	}

	var names []string
	doc.Find(linkSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			names = append(names, text)
		}
		return len(names) < 2
	})

	if len(names) < 2 {
		return CategoryPair{}, fmt.Errorf("%w: breadcrumb has %d links", ErrMissingField, len(names))
	}

	return CategoryPair{Category: names[0], Subcategory: names[1]}, nil
}
