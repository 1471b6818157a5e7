package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed services.yaml
var servicesYAML []byte

// FAQ is one question/answer pair attached to a sub-service.
type FAQ struct {
	Question string `yaml:"q"`
	Answer   string `yaml:"a"`
}

// SubService describes one offered service: its eligibility questions,
// document checklist, next-steps summary and FAQ entries.
type SubService struct {
	Name      string   `yaml:"name"`
	Questions []string `yaml:"questions"`
	Checklist []string `yaml:"checklist"`
	NextSteps string   `yaml:"next_steps"`
	FAQs      []FAQ    `yaml:"faqs"`
}

// Category groups sub-services under a top-level service area.
type Category struct {
	Name        string       `yaml:"name"`
	Emoji       string       `yaml:"emoji"`
	SubServices []SubService `yaml:"subservices"`
}

// Catalog is the read-only service hierarchy the dialog walks through.
// Order matters: picker rows are rendered in document order.
type Catalog struct {
	categories []Category
}

type document struct {
	Categories []Category `yaml:"categories"`
}

// Load parses the embedded service document.
func Load() (*Catalog, error) {
	return Parse(servicesYAML)
}

// Parse builds a Catalog from a YAML document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	return &Catalog{categories: doc.Categories}, nil
}

// Categories returns all categories in document order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Category looks up a category by name.
func (c *Catalog) Category(name string) (*Category, bool) {
	for i := range c.categories {
		if c.categories[i].Name == name {
			return &c.categories[i], true
		}
	}
	return nil, false
}

// SubService looks up a sub-service by category and name.
func (c *Catalog) SubService(category, name string) (*SubService, bool) {
	cat, ok := c.Category(category)
	if !ok {
		return nil, false
	}
	for i := range cat.SubServices {
		if cat.SubServices[i].Name == name {
			return &cat.SubServices[i], true
		}
	}
	return nil, false
}
