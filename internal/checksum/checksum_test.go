package checksum

import (
	"testing"

	"course-scraper/internal/scraper"
)

func testCourse() scraper.Course {
	return scraper.Course{
		Title:       "Go in Practice",
		Author:      "Jane Doe",
		Price:       "49.99",
		Category:    "Development",
		Subcategory: "Programming Languages",
	}
}

func TestCourseHash(t *testing.T) {
	gen := NewGenerator()
	course := testCourse()

	hash1 := gen.CourseHash(course)
	hash2 := gen.CourseHash(course)

	// Хеш должен быть детерминированным
	if hash1 != hash2 {
		t.Errorf("Hash not deterministic: %s != %s", hash1, hash2)
	}

	// SHA256 hex
	if len(hash1) != 64 {
		t.Errorf("Hash wrong length: %d, expected 64", len(hash1))
	}

	changed := course
	changed.Title = "Rust in Practice"
	if hash1 == gen.CourseHash(changed) {
		t.Errorf("Hash should change when title changes")
	}

	// цена не входит в ключ: её изменение обновляет строку, а не создаёт новую
	repriced := course
	repriced.Price = "9.99"
	if hash1 != gen.CourseHash(repriced) {
		t.Errorf("Hash should not depend on price")
	}
}

func TestVerifyCourseHash(t *testing.T) {
	gen := NewGenerator()
	course := testCourse()

	hash := gen.CourseHash(course)

	if !gen.VerifyCourseHash(hash, course) {
		t.Errorf("VerifyCourseHash failed for correct data")
	}

	other := course
	other.Author = "John Roe"
	if gen.VerifyCourseHash(hash, other) {
		t.Errorf("VerifyCourseHash should fail for wrong author")
	}
}

func TestCategoryHashSeparatesFields(t *testing.T) {
	gen := NewGenerator()

	a := gen.CategoryHash(scraper.CategoryPair{Category: "IT", Subcategory: "Network"})
	b := gen.CategoryHash(scraper.CategoryPair{Category: "IT Network", Subcategory: ""})
	if a == b {
		t.Errorf("Category hashes should differ")
	}
}
