package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Selectors — версионированный набор CSS-селекторов разметки маркетплейса.
// Каждое поле карточки задаётся списком: первый непустой результат выигрывает.
type Selectors struct {
	Version        string   `yaml:"version"`
	CardContainer  string   `yaml:"card_container"`
	Card           string   `yaml:"card"`
	Link           []string `yaml:"link"`
	Title          []string `yaml:"title"`
	Description    []string `yaml:"description"`
	Author         []string `yaml:"author"`
	Duration       []string `yaml:"duration"`
	Rating         []string `yaml:"rating"`
	Price          []string `yaml:"price"`
	Image          []string `yaml:"image"`
	Breadcrumb     string   `yaml:"breadcrumb"`
	BreadcrumbLink string   `yaml:"breadcrumb_link"`
}

// LoadSelectors загружает селекторы из YAML файла
func LoadSelectors(filePath string) (*Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("selectors file not found: %s: %w", filePath, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close selectors file: %v\n", closeErr)
		}
	}()

	var selectors Selectors
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	if err := validateSelectors(&selectors); err != nil {
		return nil, fmt.Errorf("selectors %s: %w", filePath, err)
	}

	return &selectors, nil
}

// LoadSelectorsFile загружает селекторы, путь к которым указан в конфиге.
// Относительный путь считается от каталога файла конфигурации.
func (c *Config) LoadSelectorsFile(configPath string) (*Selectors, error) {
	filePath := c.SelectorsFile
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(filepath.Dir(configPath), filePath)
	}
	return LoadSelectors(filePath)
}

// validateSelectors проверяет минимальный набор селекторов
func validateSelectors(s *Selectors) error {
	if s.Version == "" {
		return fmt.Errorf("version is required")
	}
	if s.CardContainer == "" {
		return fmt.Errorf("card_container is required")
	}
	if s.Card == "" {
		return fmt.Errorf("card is required")
	}
	required := map[string][]string{
		"link":        s.Link,
		"title":       s.Title,
		"description": s.Description,
		"author":      s.Author,
		"duration":    s.Duration,
		"price":       s.Price,
		"image":       s.Image,
	}
	for name, list := range required {
		if len(list) == 0 {
			return fmt.Errorf("%s is required", name)
		}
	}
	// rating необязателен: у курсов без отзывов его нет
	if s.Breadcrumb == "" {
		return fmt.Errorf("breadcrumb is required")
	}
	if s.BreadcrumbLink == "" {
		return fmt.Errorf("breadcrumb_link is required")
	}
	return nil
}
