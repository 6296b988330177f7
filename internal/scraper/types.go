package scraper

import (
	"context"
	"errors"
	"time"
)

// Course — одна строка датасета, собирается из карточки листинга
type Course struct {
	Title       string
	Description string
	Author      string
	Duration    string // часы, без единиц
	Rating      string // пусто, если у курса нет отзывов
	Price       string // без валюты, десятичная точка
	ImageName   string
	Category    string
	Subcategory string
	URL         string
}

type CategoryPair struct {
	Category    string
	Subcategory string
}

var (
	// ErrWaitTimeout возвращается реализацией Page/Tab, когда элемент не стал видимым вовремя
	ErrWaitTimeout = errors.New("wait timeout")

	ErrPageLoadTimeout = errors.New("listing page load timeout")
	ErrCategoryTimeout = errors.New("category lookup timeout")
	ErrFreeCourse      = errors.New("free course")
	ErrMissingField    = errors.New("required field missing")
	ErrScrollExhausted = errors.New("scroll did not settle")
	ErrImageUnresolved = errors.New("image source not resolved")
)

// IsSkip: карточку пропускаем, прогон продолжается
func IsSkip(err error) bool {
	return errors.Is(err, ErrFreeCourse) ||
		errors.Is(err, ErrCategoryTimeout) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrImageUnresolved)
}

// SkipReason — короткая метка для логов и статистики
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrFreeCourse):
		return "free_course"
	case errors.Is(err, ErrCategoryTimeout):
		return "category_timeout"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrImageUnresolved):
		return "image_unresolved"
	default:
		return "other"
	}
}

// Card — отрендеренная карточка курса на странице листинга
type Card interface {
	// HTML возвращает снимок разметки карточки (outerHTML)
	HTML(ctx context.Context) (string, error)
	// Property читает текущее значение DOM-свойства первого элемента по селектору.
	// Если элемента нет, возвращает пустую строку без ошибки.
	Property(ctx context.Context, selector, name string) (string, error)
}

// Page — основная вкладка браузера
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitCards ждёт видимости контейнера и всех карточек; по таймауту — ErrWaitTimeout
	WaitCards(ctx context.Context, containerSelector, cardSelector string, timeout time.Duration) ([]Card, error)
	ScrollY(ctx context.Context) (float64, error)
	ScrollToTop(ctx context.Context) error
	ScrollByScreen(ctx context.Context) error
	// OpenTab открывает отдельную вкладку на url; закрыть её обязан вызывающий
	OpenTab(ctx context.Context, url string) (Tab, error)
}

// Tab — короткоживущая вторичная вкладка
type Tab interface {
	// WaitVisible ждёт видимости элемента и возвращает его outerHTML; по таймауту — ErrWaitTimeout
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (string, error)
	// Close закрывает вкладку и возвращает фокус основной
	Close() error
}

// Downloader скачивает байты картинки
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// ImageStore сохраняет картинку под именем файла
type ImageStore interface {
	Save(name string, data []byte) error
}
