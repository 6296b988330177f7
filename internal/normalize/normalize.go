package normalize

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"course-scraper/internal/config"
)

var (
	spacesRe = regexp.MustCompile(`\s+`)
	// Первое число в строке: "12.5 total hours", "49,99 zł", "1,299.99"
	numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

type Normalizer struct {
	cfg *config.Config
}

func NewNormalizer(cfg *config.Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// CleanText убирает NBSP и схлопывает пробелы по настройкам
func (n *Normalizer) CleanText(text string) string {
	if n.cfg.Normalize.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.cfg.Normalize.CollapseSpaces {
		text = spacesRe.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}

// Number извлекает ведущее число из подписи и приводит десятичный
// разделитель к точке. Пустая строка — числа нет.
func Number(label string) string {
	token := numberRe.FindString(label)
	if token == "" {
		return ""
	}

	lastComma := strings.LastIndex(token, ",")
	lastDot := strings.LastIndex(token, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Оба разделителя: последний — десятичный, остальные — тысячные
		if lastComma > lastDot {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(token, ",") > 1 {
			token = strings.ReplaceAll(token, ",", "")
		} else {
			token = strings.Replace(token, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(token, ".") > 1 {
			token = strings.ReplaceAll(token, ".", "")
		}
	}

	return token
}

// Duration: "12.5 total hours" → "12.5"
func Duration(label string) string {
	return Number(label)
}

// Price: "49,99 zł" → "49.99"
func Price(label string) string {
	return Number(label)
}

// Rating: "4,6" → "4.6"; пустая подпись остаётся пустой
func Rating(label string) string {
	return Number(label)
}

// IsAbsoluteURL — аналог validators.url: только http(s) со схемой и хостом.
// Плейсхолдеры ленивой загрузки (data:, пустые src) сюда не проходят.
func IsAbsoluteURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ImageURL убирает query и якорь, подменяет маркер размера и возвращает
// URL для скачивания и имя файла.
func ImageURL(raw, sizeFrom, sizeTo string) (fetchURL string, fileName string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("invalid image URL %q: %w", raw, err)
	}

	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	if sizeFrom != "" {
		u.Path = strings.ReplaceAll(u.Path, sizeFrom, sizeTo)
		u.RawPath = ""
	}

	fileName = path.Base(u.Path)
	if fileName == "." || fileName == "/" {
		return "", "", fmt.Errorf("image URL has no file name: %q", raw)
	}

	return u.String(), fileName, nil
}

// ResolveURL делает относительную ссылку карточки абсолютной
func ResolveURL(base, href string) (string, error) {
	href = NormalizeURL(href)
	if href == "" {
		return "", fmt.Errorf("empty link")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", href, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// NormalizeURL нормализует URL (убирает якоря)
func NormalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	if idx := strings.Index(urlStr, "#"); idx > -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}
