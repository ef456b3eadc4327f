package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/habitual/pkg/habitual/internalerr"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog is invalid: %v", err))
	}
	return c
}

// DefaultYAML returns the built-in catalog document.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// LoadYAML reads a catalog file.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document. Two layouts are accepted under the
// top-level "categories" key, and both keep document order:
//
//	categories:
//	  - name: Fitness
//	    habits: [Workout for 30 minutes]
//
//	categories:
//	  Fitness: [Workout for 30 minutes]
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Categories yaml.Node `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", internalerr.ErrConfiguration, err)
	}

	var categories []Category
	switch doc.Categories.Kind {
	case yaml.SequenceNode:
		if err := doc.Categories.Decode(&categories); err != nil {
			return nil, fmt.Errorf("%w: decode categories: %v", internalerr.ErrConfiguration, err)
		}
	case yaml.MappingNode:
		content := doc.Categories.Content
		for i := 0; i+1 < len(content); i += 2 {
			var habits []string
			if err := content[i+1].Decode(&habits); err != nil {
				return nil, fmt.Errorf("%w: category %q: %v", internalerr.ErrConfiguration, content[i].Value, err)
			}
			categories = append(categories, Category{Name: content[i].Value, Habits: habits})
		}
	case 0:
		return nil, fmt.Errorf("%w: catalog has no categories key", internalerr.ErrConfiguration)
	default:
		return nil, fmt.Errorf("%w: categories must be a list or a mapping", internalerr.ErrConfiguration)
	}

	return New(categories)
}

// MarshalYAML renders the catalog in list layout.
func (c *Catalog) MarshalYAML() (interface{}, error) {
	return struct {
		Categories []Category `yaml:"categories"`
	}{Categories: c.Categories()}, nil
}
