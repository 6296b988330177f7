package scrapertest

import (
	"fmt"
	"strings"

	"course-scraper/internal/config"
)

// Placeholder — src картинки до ленивой загрузки
const Placeholder = "data:image/gif;base64,R0lGODlhAQABAIAAAP"

// Selectors под разметку, которую строит CardMarkup
func Selectors() *config.Selectors {
	return &config.Selectors{
		Version:        "test",
		CardContainer:  "div.list",
		Card:           "div.list div.card",
		Link:           []string{"a.card-link"},
		Title:          []string{"div.title"},
		Description:    []string{"p.headline"},
		Author:         []string{"div.author"},
		Duration:       []string{"span.duration"},
		Rating:         []string{"span.rating"},
		Price:          []string{"div.price span span"},
		Image:          []string{"img.cover"},
		Breadcrumb:     "div.breadcrumb",
		BreadcrumbLink: "a.crumb",
	}
}

// CardFixture — поля карточки; пустые Price/Rating означают отсутствие элемента
type CardFixture struct {
	Link        string
	Title       string
	Description string
	Author      string
	Duration    string
	Rating      string
	Price       string
	ImageSrc    string
}

func CardMarkup(f CardFixture) string {
	var b strings.Builder
	b.WriteString(`<div class="card">`)
	fmt.Fprintf(&b, `<a class="card-link" href="%s">`, f.Link)
	fmt.Fprintf(&b, `<img class="cover" src="%s">`, f.ImageSrc)
	fmt.Fprintf(&b, `<div class="title">%s</div>`, f.Title)
	fmt.Fprintf(&b, `<p class="headline">%s</p>`, f.Description)
	fmt.Fprintf(&b, `<div class="author">%s</div>`, f.Author)
	if f.Rating != "" {
		fmt.Fprintf(&b, `<span class="rating">%s</span>`, f.Rating)
	}
	fmt.Fprintf(&b, `<span class="duration">%s</span>`, f.Duration)
	if f.Price != "" {
		fmt.Fprintf(&b, `<div class="price"><span><span>%s</span></span></div>`, f.Price)
	}
	b.WriteString(`</a></div>`)
	return b.String()
}

// BreadcrumbMarkup — крошки страницы курса
func BreadcrumbMarkup(names ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="breadcrumb">`)
	for _, n := range names {
		fmt.Fprintf(&b, `<a class="crumb" href="#">%s</a>`, n)
	}
	b.WriteString(`</div>`)
	return b.String()
}
