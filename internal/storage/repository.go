package storage

import (
	"context"

	"course-scraper/internal/scraper"
)

// Repository — приёмник итоговых наборов данных (CSV, SQL Server)
type Repository interface {
	// SaveCourses сохраняет строки курсов в порядке сбора
	SaveCourses(ctx context.Context, courses []scraper.Course) error

	// SaveCategories сохраняет уникальные пары категория/подкатегория
	SaveCategories(ctx context.Context, categories []scraper.CategoryPair) error

	Close() error
}

// DistinctCategories возвращает уникальные пары в порядке первого появления
func DistinctCategories(courses []scraper.Course) []scraper.CategoryPair {
	seen := make(map[scraper.CategoryPair]struct{}, len(courses))
	pairs := make([]scraper.CategoryPair, 0)

	for _, c := range courses {
		pair := scraper.CategoryPair{Category: c.Category, Subcategory: c.Subcategory}
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}

	return pairs
}
