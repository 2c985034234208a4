// Package settings stores site-wide presentation settings: per-category
// descriptions and images plus free-form key/value entries.
//
// The catalog core never imports this package. Handlers read settings through
// the Store interface, so the backing store can change without touching
// filtering or import code.
package settings

import (
	"context"
	"strings"
)

// Category holds presentation data for one category slug.
type Category struct {
	Description string `yaml:"description,omitempty" json:"description"`
	Image       string `yaml:"image,omitempty" json:"image"`
}

// Settings is the full settings document.
type Settings struct {
	Categories map[string]Category `yaml:"categories" json:"categories"`
	Values     map[string]string   `yaml:"values" json:"values"`
}

// Store loads and saves the settings document as a whole.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Category returns the settings for slug, or the zero Category.
func (s Settings) Category(slug string) Category {
	return s.Categories[normalizeSlug(slug)]
}

// Value returns the entry for key, or def when unset or blank.
func (s Settings) Value(key, def string) string {
	if v := strings.TrimSpace(s.Values[key]); v != "" {
		return v
	}
	return def
}

// Normalize returns a copy with non-nil maps, lower-case trimmed slugs and
// blank keys removed.
func (s Settings) Normalize() Settings {
	out := Settings{
		Categories: make(map[string]Category, len(s.Categories)),
		Values:     make(map[string]string, len(s.Values)),
	}
	for slug, c := range s.Categories {
		if slug = normalizeSlug(slug); slug != "" {
			out.Categories[slug] = Category{
				Description: strings.TrimSpace(c.Description),
				Image:       strings.TrimSpace(c.Image),
			}
		}
	}
	for k, v := range s.Values {
		if k = strings.TrimSpace(k); k != "" {
			out.Values[k] = v
		}
	}
	return out
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
