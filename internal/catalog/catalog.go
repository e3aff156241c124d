package catalog

import (
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

//go:embed icons/*.svg
var iconFS embed.FS

// Rating bounds shared by every question.
const (
	MinRating = 0
	MaxRating = 5
)

// Question is a single rated statement.
type Question struct {
	ID           string `yaml:"id" json:"id"`
	Label        string `yaml:"label" json:"label"`
	Helper       string `yaml:"helper" json:"helper"`
	DefaultValue int    `yaml:"default" json:"defaultValue"`
}

// Category groups questions; question order is display order.
type Category struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

// TitleOption is a selectable category title and the icon drawn for it.
type TitleOption struct {
	Title string `yaml:"title" json:"title"`
	Icon  string `yaml:"icon" json:"icon"`
}

// Catalog is the immutable question set loaded once at startup.
type Catalog struct {
	Title        string        `yaml:"title" json:"title"`
	DefaultIcon  string        `yaml:"default_icon" json:"defaultIcon"`
	TitleOptions []TitleOption `yaml:"title_options" json:"titleOptions"`
	Categories   []Category    `yaml:"categories" json:"categories"`

	categoryIndex map[string]int
	questionIndex map[string]Question
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and indexes categories and questions.
// Defaults outside the rating scale are clamped.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.categoryIndex = make(map[string]int, len(c.Categories))
	c.questionIndex = map[string]Question{}
	for ci := range c.Categories {
		cat := &c.Categories[ci]
		if strings.TrimSpace(cat.ID) == "" {
			return errors.New("catalog: category without id")
		}
		if _, dup := c.categoryIndex[cat.ID]; dup {
			return fmt.Errorf("catalog: duplicate category id %q", cat.ID)
		}
		c.categoryIndex[cat.ID] = ci
		for qi := range cat.Questions {
			q := &cat.Questions[qi]
			if strings.TrimSpace(q.ID) == "" {
				return fmt.Errorf("catalog: question without id in %q", cat.ID)
			}
			if _, dup := c.questionIndex[q.ID]; dup {
				return fmt.Errorf("catalog: duplicate question id %q", q.ID)
			}
			q.DefaultValue = min(max(q.DefaultValue, MinRating), MaxRating)
			c.questionIndex[q.ID] = *q
		}
	}
	return nil
}

// Category looks up a category by id.
func (c *Catalog) Category(id string) (Category, bool) {
	i, ok := c.categoryIndex[id]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

// Question looks up a question by id across all categories.
func (c *Catalog) Question(id string) (Question, bool) {
	q, ok := c.questionIndex[id]
	return q, ok
}

// HasCategory reports whether id names a category.
func (c *Catalog) HasCategory(id string) bool {
	_, ok := c.categoryIndex[id]
	return ok
}

// HasQuestion reports whether id names a question.
func (c *Catalog) HasQuestion(id string) bool {
	_, ok := c.questionIndex[id]
	return ok
}

// CategoryIDs lists category ids in catalog order.
func (c *Catalog) CategoryIDs() []string {
	ids := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		ids = append(ids, cat.ID)
	}
	return ids
}

// HasTitle reports whether title is one of the selectable title options.
// A catalog without title options accepts any title.
func (c *Catalog) HasTitle(title string) bool {
	if len(c.TitleOptions) == 0 {
		return true
	}
	for _, opt := range c.TitleOptions {
		if opt.Title == title {
			return true
		}
	}
	return false
}

// IconFor returns the icon reference for a resolved category title.
func (c *Catalog) IconFor(title string) string {
	for _, opt := range c.TitleOptions {
		if opt.Title == title && opt.Icon != "" {
			return opt.Icon
		}
	}
	return c.DefaultIcon
}

// IconSVG returns the embedded SVG document for an icon reference.
func IconSVG(ref string) ([]byte, bool) {
	if ref == "" || strings.ContainsAny(ref, "/\\.") {
		return nil, false
	}
	data, err := iconFS.ReadFile("icons/" + ref + ".svg")
	if err != nil {
		return nil, false
	}
	return data, true
}

// IconDataURI inlines an icon so it renders without a server round trip.
func IconDataURI(ref string) string {
	data, ok := IconSVG(ref)
	if !ok {
		return ""
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(data)
}
