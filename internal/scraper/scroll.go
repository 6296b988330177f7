package scraper

import (
	"context"
	"fmt"
	"time"

	"course-scraper/internal/observability"
)

// Scroller прокручивает страницу, чтобы ленивый контент успел подгрузиться
type Scroller struct {
	page     Page
	maxSteps int
	logger   *observability.Logger
}

func NewScroller(page Page, maxSteps int, logger *observability.Logger) *Scroller {
	return &Scroller{
		page:     page,
		maxSteps: maxSteps,
		logger:   logger,
	}
}

func (s *Scroller) ToTop(ctx context.Context) error {
	if err := s.page.ScrollToTop(ctx); err != nil {
		return fmt.Errorf("scroll to top: %w", err)
	}
	return nil
}

// ToBottom листает на высоту экрана, пока scrollY не перестанет меняться
// между двумя замерами. Не более maxSteps шагов, иначе ErrScrollExhausted.
func (s *Scroller) ToBottom(ctx context.Context, delay time.Duration) error {
	offset, err := s.page.ScrollY(ctx)
	if err != nil {
		return fmt.Errorf("read scroll offset: %w", err)
	}

	for step := 1; step <= s.maxSteps; step++ {
		if err := s.page.ScrollByScreen(ctx); err != nil {
			return fmt.Errorf("scroll by screen: %w", err)
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}

		last := offset
		offset, err = s.page.ScrollY(ctx)
		if err != nil {
			return fmt.Errorf("read scroll offset: %w", err)
		}
		if offset == last {
			s.logger.Debug("Scroll settled", "steps", step, "offset", offset)
			return nil
		}
	}

	return fmt.Errorf("%w after %d steps", ErrScrollExhausted, s.maxSteps)
}

// Cycle — наверх и снова вниз
func (s *Scroller) Cycle(ctx context.Context, delay time.Duration) error {
	if err := s.ToTop(ctx); err != nil {
		return err
	}
	return s.ToBottom(ctx, delay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
