// Package csvfile пишет наборы данных в CSV с разделителем ';'.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"course-scraper/internal/observability"
	"course-scraper/internal/scraper"
)

const Delimiter = ';'

var (
	CoursesHeader    = []string{"title", "description", "author", "duration", "rating", "price", "image_name", "category", "subcategory"}
	CategoriesHeader = []string{"category", "subcategory"}
)

// Write перезаписывает файл: заголовок, затем строки.
// Кавычки ставятся только там, где без них нельзя.
func Write(path string, header []string, rows [][]string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	w := csv.NewWriter(file)
	w.Comma = Delimiter

	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	return nil
}

// CourseRow — строка курса в порядке CoursesHeader
func CourseRow(c scraper.Course) []string {
	return []string{
		c.Title,
		c.Description,
		c.Author,
		c.Duration,
		c.Rating,
		c.Price,
		c.ImageName,
		c.Category,
		c.Subcategory,
	}
}

// Repository пишет курсы и категории в два CSV файла
type Repository struct {
	coursesPath    string
	categoriesPath string
	logger         *observability.Logger
}

func NewRepository(coursesPath, categoriesPath string, logger *observability.Logger) *Repository {
	return &Repository{
		coursesPath:    coursesPath,
		categoriesPath: categoriesPath,
		logger:         logger,
	}
}

func (r *Repository) SaveCourses(_ context.Context, courses []scraper.Course) error {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, CourseRow(c))
	}

	if err := Write(r.coursesPath, CoursesHeader, rows); err != nil {
		return err
	}

	r.logger.Info("Courses written", "path", r.coursesPath, "rows", len(rows))
	return nil
}

func (r *Repository) SaveCategories(_ context.Context, categories []scraper.CategoryPair) error {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Category, c.Subcategory})
	}

	if err := Write(r.categoriesPath, CategoriesHeader, rows); err != nil {
		return err
	}

	r.logger.Info("Categories written", "path", r.categoriesPath, "rows", len(rows))
	return nil
}

func (r *Repository) Close() error {
	return nil
}
