package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"course-scraper/internal/observability"
	"course-scraper/internal/scraper"
)

func TestWriteHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "categories.csv")

	err := Write(path, CategoriesHeader, [][]string{
		{"Development", "Web Development"},
		{"Design", "UX; UI"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "category;subcategory\nDevelopment;Web Development\nDesign;\"UX; UI\"\n", string(data))
}

func TestWriteTruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is long\nmore\nmore\n"), 0o644))

	require.NoError(t, Write(path, CategoriesHeader, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "category;subcategory\n", string(data))
}

func TestRepositorySaveCourses(t *testing.T) {
	dir := t.TempDir()
	repo := NewRepository(filepath.Join(dir, "courses.csv"), filepath.Join(dir, "categories.csv"), observability.NewNopLogger())

	courses := []scraper.Course{{
		Title:       `Go "in" Practice`,
		Description: "Build real services",
		Author:      "Jane Doe",
		Duration:    "12.5",
		Rating:      "",
		Price:       "49.99",
		ImageName:   "abc.jpg",
		Category:    "Development",
		Subcategory: "Programming Languages",
		URL:         "https://www.udemy.com/course/go/",
	}}

	require.NoError(t, repo.SaveCourses(context.Background(), courses))
	require.NoError(t, repo.SaveCategories(context.Background(), []scraper.CategoryPair{{Category: "Development", Subcategory: "Programming Languages"}}))
	require.NoError(t, repo.Close())

	data, err := os.ReadFile(filepath.Join(dir, "courses.csv"))
	require.NoError(t, err)
	require.Equal(t,
		"title;description;author;duration;rating;price;image_name;category;subcategory\n"+
			"\"Go \"\"in\"\" Practice\";Build real services;Jane Doe;12.5;;49.99;abc.jpg;Development;Programming Languages\n",
		string(data))

	data, err = os.ReadFile(filepath.Join(dir, "categories.csv"))
	require.NoError(t, err)
	require.Equal(t, "category;subcategory\nDevelopment;Programming Languages\n", string(data))
}
