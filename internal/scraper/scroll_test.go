package scraper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"course-scraper/internal/observability"
	"course-scraper/internal/scraper"
	"course-scraper/internal/scraper/scrapertest"
)

func TestScrollToBottomSettles(t *testing.T) {
	page := scrapertest.NewPage()
	page.DocumentHeight = 5000
	page.ScreenHeight = 1000

	s := scraper.NewScroller(page, 20, observability.NewNopLogger())
	if err := s.ToBottom(context.Background(), 0); err != nil {
		t.Fatalf("ToBottom error: %v", err)
	}

	y, _ := page.ScrollY(context.Background())
	if y != 4000 {
		t.Errorf("scrollY = %v, want 4000", y)
	}
}

func TestScrollToBottomExhausted(t *testing.T) {
	page := scrapertest.NewPage()
	page.Endless = true

	s := scraper.NewScroller(page, 5, observability.NewNopLogger())
	err := s.ToBottom(context.Background(), 0)
	if err == nil {
		t.Fatal("expected ErrScrollExhausted for endless page")
	}
	if !errors.Is(err, scraper.ErrScrollExhausted) {
		t.Errorf("error = %v, want ErrScrollExhausted", err)
	}
}

func TestScrollCancelledContext(t *testing.T) {
	page := scrapertest.NewPage()
	page.Endless = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := scraper.NewScroller(page, 1000, observability.NewNopLogger())
	if err := s.Cycle(ctx, time.Millisecond); err == nil {
		t.Fatal("expected context error")
	}
}
