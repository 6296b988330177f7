package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"course-scraper/internal/config"
	"course-scraper/internal/fetcher"
	"course-scraper/internal/normalize"
	"course-scraper/internal/observability"
	"course-scraper/internal/scraper"
	"course-scraper/internal/scraper/scrapertest"
)

const baseURL = "https://www.udemy.com/courses/development"

type memorySink struct {
	courses    []scraper.Course
	categories []scraper.CategoryPair
	saves      int
}

func (m *memorySink) SaveCourses(_ context.Context, courses []scraper.Course) error {
	m.courses = courses
	m.saves++
	return nil
}

func (m *memorySink) SaveCategories(_ context.Context, categories []scraper.CategoryPair) error {
	m.categories = categories
	return nil
}

func (m *memorySink) Close() error { return nil }

type resetCounter struct{ resets int }

func (r *resetCounter) Reset() error {
	r.resets++
	return nil
}

type denyAll struct{}

func (denyAll) Allowed(context.Context, string) (bool, error) { return false, nil }

type fixture struct {
	cfg    *config.Config
	page   *scrapertest.Page
	images *resetCounter
	sink   *memorySink
	orch   *Orchestrator
}

func newFixture(targets ...config.TargetConfig) *fixture {
	logger := observability.NewNopLogger()
	selectors := scrapertest.Selectors()
	cfg := &config.Config{
		Rod:       config.RodConfig{PageTimeoutS: 1, BreadcrumbTimeoutS: 1},
		Scroll:    config.ScrollConfig{MaxSteps: 20},
		Targets:   targets,
		Normalize: config.NormalizeConfig{TrimNBSP: true, CollapseSpaces: true},
	}

	page := scrapertest.NewPage()
	scroller := scraper.NewScroller(page, cfg.Scroll.MaxSteps, logger)
	categories := scraper.NewCategoryResolver(page, selectors.Breadcrumb, selectors.BreadcrumbLink, time.Second, logger)
	images := scraper.NewImageResolver(scroller, &scrapertest.Downloader{}, scrapertest.NewStore(), scraper.ImageOptions{
		Selectors:   selectors.Image,
		SizeFrom:    "240x135",
		SizeTo:      "480x270",
		MaxAttempts: 2,
	}, logger)
	extractor := scraper.NewExtractor(selectors, normalize.NewNormalizer(cfg), categories, images, logger)

	f := &fixture{
		cfg:    cfg,
		page:   page,
		images: &resetCounter{},
		sink:   &memorySink{},
	}
	f.orch = NewOrchestrator(cfg, selectors, logger, page, scroller, extractor, nil, f.images, f.sink)
	return f
}

// addListing кладёт на страницу n карточек; каждая третья бесплатная, если free
func (f *fixture) addListing(t *testing.T, base string, pageNum, n int, free bool) {
	t.Helper()
	pageURL, err := PageURL(base, pageNum)
	require.NoError(t, err)

	cards := make([]scraper.Card, 0, n)
	for i := 0; i < n; i++ {
		slug := fmt.Sprintf("/course/p%d-c%d/", pageNum, i)
		fx := scrapertest.CardFixture{
			Link:        slug,
			Title:       fmt.Sprintf("Course %d.%d", pageNum, i),
			Description: "desc",
			Author:      "Author",
			Duration:    "3 total hours",
			Rating:      "4.5",
			Price:       "19.99",
			ImageSrc:    fmt.Sprintf("https://img-c.udemycdn.com/course/240x135/p%dc%d.jpg", pageNum, i),
		}
		if free && i%3 == 0 {
			fx.Price = ""
		}
		sub := "Web Development"
		if i%2 == 1 {
			sub = "Data Science"
		}
		f.page.Breadcrumbs["https://www.udemy.com"+slug] = scrapertest.BreadcrumbMarkup("Development", sub)
		cards = append(cards, scrapertest.NewCard(scrapertest.CardMarkup(fx)))
	}
	f.page.Listings[pageURL] = cards
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		base string
		n    int
		want string
	}{
		{"https://www.udemy.com/courses/development", 1, "https://www.udemy.com/courses/development/?p=1"},
		{"https://www.udemy.com/courses/design/", 2, "https://www.udemy.com/courses/design/?p=2"},
		{"https://www.udemy.com/courses/business/?lang=en", 3, "https://www.udemy.com/courses/business/?lang=en&p=3"},
		{"https://www.udemy.com/courses/business/?p=7", 4, "https://www.udemy.com/courses/business/?p=4"},
	}

	for _, tt := range tests {
		got, err := PageURL(tt.base, tt.n)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestCollectCoursesPaginatesUntilTarget(t *testing.T) {
	f := newFixture()
	f.addListing(t, baseURL, 1, 12, false)
	f.addListing(t, baseURL, 2, 12, false)
	f.addListing(t, baseURL, 3, 12, false)

	rows, stats, err := f.orch.CollectCourses(context.Background(), config.TargetConfig{URL: baseURL, Count: 16})
	require.NoError(t, err)

	// страница обрабатывается целиком: перебор сохраняется
	require.Len(t, rows, 24)
	require.Equal(t, 2, stats.TotalPages)
	require.Equal(t, 24, stats.Collected)
	require.Equal(t, []string{
		"https://www.udemy.com/courses/development/?p=1",
		"https://www.udemy.com/courses/development/?p=2",
	}, f.page.Navigations)
	require.Zero(t, f.page.OpenTabsNow())
	require.Equal(t, 1, f.page.MaxOpenTabs)
}

func TestCollectCoursesCountsSkips(t *testing.T) {
	f := newFixture()
	f.addListing(t, baseURL, 1, 6, true)
	f.addListing(t, baseURL, 2, 6, true)

	rows, stats, err := f.orch.CollectCourses(context.Background(), config.TargetConfig{URL: baseURL, Count: 6})
	require.NoError(t, err)

	require.Len(t, rows, 8)
	require.Equal(t, 4, stats.Skipped["free_course"])
	for _, r := range rows {
		require.NotEmpty(t, r.Price)
	}
}

func TestCollectCoursesPageTimeoutIsFatal(t *testing.T) {
	f := newFixture()
	f.addListing(t, baseURL, 1, 4, false)

	rows, stats, err := f.orch.CollectCourses(context.Background(), config.TargetConfig{URL: baseURL, Count: 10})
	require.ErrorIs(t, err, scraper.ErrPageLoadTimeout)
	require.Len(t, rows, 4)
	require.Equal(t, 1, stats.TotalPages)
}

func TestCollectCoursesRespectsRobots(t *testing.T) {
	f := newFixture()
	f.addListing(t, baseURL, 1, 4, false)
	f.orch.robots = denyAll{}

	_, _, err := f.orch.CollectCourses(context.Background(), config.TargetConfig{URL: baseURL, Count: 1})
	require.ErrorIs(t, err, fetcher.ErrDisallowed)
	require.Empty(t, f.page.Navigations)
}

func TestRunWritesAllTargetsToSinks(t *testing.T) {
	design := "https://www.udemy.com/courses/design"
	f := newFixture(
		config.TargetConfig{URL: baseURL, Count: 4},
		config.TargetConfig{URL: design, Count: 2},
	)
	f.addListing(t, baseURL, 1, 4, false)
	f.addListing(t, design, 1, 2, false)

	run, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, f.images.resets)
	require.Equal(t, 6, run.Courses)
	require.Len(t, run.Targets, 2)
	require.Len(t, f.sink.courses, 6)
	require.Equal(t, []scraper.CategoryPair{
		{Category: "Development", Subcategory: "Web Development"},
		{Category: "Development", Subcategory: "Data Science"},
	}, f.sink.categories)
}

func TestRunAbortsBeforeWriting(t *testing.T) {
	f := newFixture(config.TargetConfig{URL: baseURL, Count: 4})

	_, err := f.orch.Run(context.Background())
	require.True(t, errors.Is(err, scraper.ErrPageLoadTimeout))
	require.Zero(t, f.sink.saves)
}
