package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"course-scraper/internal/scraper"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// CourseHash — ключ строки курса для зеркала в БД
// Формула: SHA256(title|author|category|subcategory)
func (g *Generator) CourseHash(c scraper.Course) string {
	return g.hash(c.Title, c.Author, c.Category, c.Subcategory)
}

// CategoryHash — ключ пары категория/подкатегория
func (g *Generator) CategoryHash(p scraper.CategoryPair) string {
	return g.hash(p.Category, p.Subcategory)
}

// VerifyCourseHash проверяет соответствие хеша
func (g *Generator) VerifyCourseHash(expectedHash string, c scraper.Course) bool {
	return g.CourseHash(c) == expectedHash
}

func (g *Generator) hash(parts ...string) string {
	content := strings.Join(parts, "|")
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum)
}
