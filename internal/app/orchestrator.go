package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"course-scraper/internal/config"
	"course-scraper/internal/fetcher"
	"course-scraper/internal/observability"
	"course-scraper/internal/scraper"
	"course-scraper/internal/storage"
)

// RobotsChecker разрешает или запрещает навигацию на страницу листинга
type RobotsChecker interface {
	Allowed(ctx context.Context, url string) (bool, error)
}

// ImageDirectory очищается в начале прогона
type ImageDirectory interface {
	Reset() error
}

type Orchestrator struct {
	cfg       *config.Config
	selectors *config.Selectors
	logger    *observability.Logger
	page      scraper.Page
	scroller  *scraper.Scroller
	extractor *scraper.Extractor
	robots    RobotsChecker
	images    ImageDirectory
	sinks     []storage.Repository
}

func NewOrchestrator(
	cfg *config.Config,
	selectors *config.Selectors,
	logger *observability.Logger,
	page scraper.Page,
	scroller *scraper.Scroller,
	extractor *scraper.Extractor,
	robots RobotsChecker,
	images ImageDirectory,
	sinks ...storage.Repository,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		selectors: selectors,
		logger:    logger,
		page:      page,
		scroller:  scroller,
		extractor: extractor,
		robots:    robots,
		images:    images,
		sinks:     sinks,
	}
}

type PaginationStats struct {
	TotalPages    int
	TotalCards    int
	Collected     int
	Skipped       map[string]int
	StoppedReason string
}

func (s *PaginationStats) skippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// RunStats — итог прогона по всем целям
type RunStats struct {
	Targets    []*PaginationStats
	Courses    int
	Categories int
}

// Run собирает все цели, затем отдаёт оба набора каждому приёмнику.
// Фатальная ошибка любой цели прерывает прогон до записи.
func (o *Orchestrator) Run(ctx context.Context) (*RunStats, error) {
	if o.images != nil {
		if err := o.images.Reset(); err != nil {
			return nil, err
		}
	}

	run := &RunStats{}
	var courses []scraper.Course

	for _, target := range o.cfg.Targets {
		rows, stats, err := o.CollectCourses(ctx, target)
		if stats != nil {
			run.Targets = append(run.Targets, stats)
		}
		if err != nil {
			return run, fmt.Errorf("collect %s: %w", target.URL, err)
		}
		courses = append(courses, rows...)
	}

	categories := storage.DistinctCategories(courses)
	run.Courses = len(courses)
	run.Categories = len(categories)

	for _, sink := range o.sinks {
		if err := sink.SaveCourses(ctx, courses); err != nil {
			return run, fmt.Errorf("save courses: %w", err)
		}
		if err := sink.SaveCategories(ctx, categories); err != nil {
			return run, fmt.Errorf("save categories: %w", err)
		}
	}

	o.logger.Info("Run completed",
		"targets", len(o.cfg.Targets),
		"courses", run.Courses,
		"categories", run.Categories,
		"sinks", len(o.sinks),
	)

	return run, nil
}

// CollectCourses листает страницы цели, пока строк не станет не меньше target.Count
func (o *Orchestrator) CollectCourses(ctx context.Context, target config.TargetConfig) ([]scraper.Course, *PaginationStats, error) {
	o.logger.Info("Starting pagination",
		"base_url", target.URL,
		"target", target.Count,
	)

	stats := &PaginationStats{Skipped: map[string]int{}}
	rows := make([]scraper.Course, 0, target.Count)

	for pageNum := 1; len(rows) < target.Count; pageNum++ {
		pageURL, err := PageURL(target.URL, pageNum)
		if err != nil {
			stats.StoppedReason = fmt.Sprintf("bad page URL at page %d", pageNum)
			return rows, stats, err
		}

		o.logger.Info("Processing page",
			"page", pageNum,
			"url", pageURL,
			"collected", len(rows),
		)

		cards, err := o.loadPage(ctx, pageURL)
		if err != nil {
			o.logger.Error("Page load failed",
				"page", pageNum,
				"url", pageURL,
				"error", err.Error(),
			)
			stats.StoppedReason = fmt.Sprintf("page %d failed: %v", pageNum, err)
			return rows, stats, err
		}

		stats.TotalPages++
		stats.TotalCards += len(cards)

		for i, card := range cards {
			course, err := o.extractor.Extract(ctx, card, pageURL)
			if err != nil {
				if scraper.IsSkip(err) {
					reason := scraper.SkipReason(err)
					stats.Skipped[reason]++
					o.logger.Warn("Card skipped",
						"page", pageNum,
						"card_num", i+1,
						"reason", reason,
						"error", err.Error(),
					)
					continue
				}
				stats.StoppedReason = fmt.Sprintf("card %d on page %d failed: %v", i+1, pageNum, err)
				return rows, stats, fmt.Errorf("page %d card %d: %w", pageNum, i+1, err)
			}

			o.logger.Debug("Card info",
				"page", pageNum,
				"card_num", i+1,
				"title", course.Title,
				"category", course.Category,
				"url", course.URL,
			)
			rows = append(rows, *course)
		}

		o.logger.Info("Page analysis",
			"page", pageNum,
			"cards", len(cards),
			"collected", len(rows),
			"skipped", stats.skippedTotal(),
		)
	}

	stats.Collected = len(rows)
	stats.StoppedReason = fmt.Sprintf("reached target %d", target.Count)

	o.logger.Info("Pagination completed",
		"base_url", target.URL,
		"total_pages", stats.TotalPages,
		"total_cards", stats.TotalCards,
		"collected", stats.Collected,
		"skipped", stats.skippedTotal(),
		"reason", stats.StoppedReason,
	)

	return rows, stats, nil
}

// loadPage открывает страницу листинга, ждёт карточки и прокручивает её до конца
func (o *Orchestrator) loadPage(ctx context.Context, pageURL string) ([]scraper.Card, error) {
	if o.robots != nil {
		allowed, err := o.robots.Allowed(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("robots.txt check failed: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", fetcher.ErrDisallowed, pageURL)
		}
	}

	if err := o.page.Navigate(ctx, pageURL); err != nil {
		return nil, err
	}

	cards, err := o.page.WaitCards(ctx, o.selectors.CardContainer, o.selectors.Card, o.cfg.GetRodPageTimeout())
	if err != nil {
		if errors.Is(err, scraper.ErrWaitTimeout) {
			return nil, fmt.Errorf("%w: %s: %w", scraper.ErrPageLoadTimeout, pageURL, err)
		}
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: %s: no cards", scraper.ErrPageLoadTimeout, pageURL)
	}

	if err := o.scroller.ToBottom(ctx, o.cfg.GetScrollStepDelay()); err != nil {
		if !errors.Is(err, scraper.ErrScrollExhausted) {
			return nil, err
		}
		o.logger.Warn("Scroll did not settle, extracting anyway", "url", pageURL, "error", err.Error())
	}

	return cards, nil
}

// PageURL: базовый URL с завершающим '/' и параметром p=<n>.
// Существующие параметры запроса сохраняются.
func PageURL(base string, n int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	q := u.Query()
	q.Set("p", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
