// Package catalog holds the ordered set of habit categories the engine
// recommends from.
//
// Category order is part of the data: it breaks ties in classification and
// fixes the order of flattened suggestion pools. A Catalog never changes
// after construction and is safe to share between goroutines.
package catalog

import (
	"fmt"
	"strings"

	"github.com/cognicore/habitual/pkg/habitual/internalerr"
)

// MinCategories is the smallest catalog that still has a "different"
// category to suggest from.
const MinCategories = 2

// Category is a named group of habit descriptions.
type Category struct {
	Name   string   `yaml:"name" json:"name"`
	Habits []string `yaml:"habits" json:"habits"`
}

// Catalog is an immutable, ordered list of categories.
type Catalog struct {
	categories []Category
	index      map[string]int
}

// New validates categories and returns a catalog holding a private copy.
func New(categories []Category) (*Catalog, error) {
	if err := Validate(categories); err != nil {
		return nil, err
	}

	c := &Catalog{
		categories: make([]Category, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for i, cat := range categories {
		habits := make([]string, len(cat.Habits))
		copy(habits, cat.Habits)
		c.categories[i] = Category{Name: cat.Name, Habits: habits}
		c.index[cat.Name] = i
	}
	return c, nil
}

// Validate checks the catalog invariants. Violations wrap
// internalerr.ErrConfiguration.
func Validate(categories []Category) error {
	if len(categories) < MinCategories {
		return fmt.Errorf("%w: catalog needs at least %d categories, got %d",
			internalerr.ErrConfiguration, MinCategories, len(categories))
	}

	seen := make(map[string]struct{}, len(categories))
	for i, cat := range categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("%w: category %d has no name", internalerr.ErrConfiguration, i)
		}
		if _, dup := seen[cat.Name]; dup {
			return fmt.Errorf("%w: duplicate category %q", internalerr.ErrConfiguration, cat.Name)
		}
		seen[cat.Name] = struct{}{}

		if len(cat.Habits) == 0 {
			return fmt.Errorf("%w: category %q has no habits", internalerr.ErrConfiguration, cat.Name)
		}
		for j, h := range cat.Habits {
			if strings.TrimSpace(h) == "" {
				return fmt.Errorf("%w: category %q habit %d is empty", internalerr.ErrConfiguration, cat.Name, j)
			}
		}
	}
	return nil
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Names returns category names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Habits returns a copy of the habits of the named category.
func (c *Catalog) Habits(name string) ([]string, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(c.categories[i].Habits))
	copy(out, c.categories[i].Habits)
	return out, true
}

// Categories returns a deep copy of the categories in order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		habits := make([]string, len(cat.Habits))
		copy(habits, cat.Habits)
		out[i] = Category{Name: cat.Name, Habits: habits}
	}
	return out
}

// Flatten concatenates all habits in category order.
// A habit listed under two categories appears twice.
func (c *Catalog) Flatten() []string {
	var n int
	for _, cat := range c.categories {
		n += len(cat.Habits)
	}
	out := make([]string, 0, n)
	for _, cat := range c.categories {
		out = append(out, cat.Habits...)
	}
	return out
}

// Contains reports whether habit appears in any category.
func (c *Catalog) Contains(habit string) bool {
	for _, cat := range c.categories {
		for _, h := range cat.Habits {
			if h == habit {
				return true
			}
		}
	}
	return false
}
