package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageDir хранит скачанные картинки курсов под их базовыми именами
type ImageDir struct {
	dir string
}

func NewImageDir(dir string) *ImageDir {
	return &ImageDir{dir: dir}
}

func (d *ImageDir) Path() string {
	return d.dir
}

// Reset удаляет картинки прошлого прогона и создаёт пустой каталог
func (d *ImageDir) Reset() error {
	if err := os.RemoveAll(d.dir); err != nil {
		return fmt.Errorf("clear image dir %s: %w", d.dir, err)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create image dir %s: %w", d.dir, err)
	}
	return nil
}

// Save записывает байты картинки; повторное имя перезаписывает файл
func (d *ImageDir) Save(name string, data []byte) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid image name %q", name)
	}

	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image %s: %w", path, err)
	}
	return nil
}
