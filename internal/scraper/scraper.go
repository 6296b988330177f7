package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"course-scraper/internal/config"
	"course-scraper/internal/normalize"
	"course-scraper/internal/observability"
)

// Extractor собирает Course из карточки листинга
type Extractor struct {
	selectors  *config.Selectors
	normalizer *normalize.Normalizer
	categories *CategoryResolver
	images     *ImageResolver
	logger     *observability.Logger
}

func NewExtractor(
	selectors *config.Selectors,
	normalizer *normalize.Normalizer,
	categories *CategoryResolver,
	images *ImageResolver,
	logger *observability.Logger,
) *Extractor {
	return &Extractor{
		selectors:  selectors,
		normalizer: normalizer,
		categories: categories,
		images:     images,
		logger:     logger,
	}
}

// Extract возвращает курс или ошибку. Ошибки, для которых IsSkip == true,
// означают пропуск карточки; остальные фатальны для прогона.
func (e *Extractor) Extract(ctx context.Context, card Card, pageURL string) (*Course, error) {
	html, err := card.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read card HTML: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse card HTML: %w", err)
	}
	sel := doc.Selection

	href := tryAttr(sel, e.selectors.Link, "href")
	permalink, err := normalize.ResolveURL(pageURL, href)
	if err != nil {
		return nil, fmt.Errorf("%w: link: %v", ErrMissingField, err)
	}

	// Нет цены со скидкой — курс бесплатный
	priceLabel := e.text(sel, e.selectors.Price)
	price := normalize.Price(priceLabel)
	if price == "" {
		e.logger.Info("Free course, skipping", "url", permalink)
		return nil, fmt.Errorf("%w: %s", ErrFreeCourse, permalink)
	}

	course := &Course{
		Title:       e.text(sel, e.selectors.Title),
		Description: e.text(sel, e.selectors.Description),
		Author:      e.text(sel, e.selectors.Author),
		Duration:    normalize.Duration(e.text(sel, e.selectors.Duration)),
		Rating:      normalize.Rating(e.text(sel, e.selectors.Rating)),
		Price:       price,
		URL:         permalink,
	}

	if field := missingField(course); field != "" {
		e.logger.Warn("Required field missing", "field", field, "url", permalink)
		return nil, fmt.Errorf("%w: %s: %s", ErrMissingField, field, permalink)
	}

	pair, err := e.categories.Resolve(ctx, permalink)
	if err != nil {
		return nil, err
	}
	course.Category = pair.Category
	course.Subcategory = pair.Subcategory

	imageSrc := tryAttr(sel, e.selectors.Image, "src")
	course.ImageName, err = e.images.ResolveAndStore(ctx, card, imageSrc)
	if err != nil {
		return nil, err
	}

	return course, nil
}

func (e *Extractor) text(sel *goquery.Selection, selectors []string) string {
	return e.normalizer.CleanText(tryText(sel, selectors))
}

func missingField(c *Course) string {
	switch {
	case c.Title == "":
		return "title"
	case c.Description == "":
		return "description"
	case c.Author == "":
		return "author"
	case c.Duration == "":
		return "duration"
	}
	return ""
}

func tryText(s *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(s.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func tryAttr(s *goquery.Selection, selectors []string, attr string) string {
	for _, selector := range selectors {
		value, exists := s.Find(selector).First().Attr(attr)
		if exists && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
