package catalog

// category.go maps public category slugs to the legacy free-text labels that
// records carry in their category field.
//
// The label vocabulary changed over time and mixes Russian and English, and a
// stored category is sometimes a compound value ("Седаны;Главная"). Matching is
// therefore always "stored category CONTAINS label", case-insensitively.
// Do not switch this to equality: compound and historical values would stop
// matching.

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// AllCategoriesName is the display name used when no category is selected.
const AllCategoriesName = "Все автомобили"

// categoryDef is one row of the static slug table.
type categoryDef struct {
	Name   string   // Display name
	Labels []string // Legacy labels, matched by substring
}

// categoryTable is static configuration, not derived from data.
var categoryTable = map[string]categoryDef{
	"suv": {
		Name:   "Внедорожники",
		Labels: []string{"Внедорожник", "Джип", "SUV"},
	},
	"crossover": {
		Name:   "Кроссоверы",
		Labels: []string{"Кроссовер", "Crossover"},
	},
	"sedan": {
		Name:   "Седаны",
		Labels: []string{"Седан", "Sedan"},
	},
	"hatchback": {
		Name:   "Хэтчбеки",
		Labels: []string{"Хэтчбек", "Хетчбек", "Hatchback"},
	},
	"minivan": {
		Name:   "Минивэны",
		Labels: []string{"Минивэн", "Минивен", "Minivan"},
	},
	"pickup": {
		Name:   "Пикапы",
		Labels: []string{"Пикап", "Pickup"},
	},
	"electric": {
		Name:   "Электромобили",
		Labels: []string{"Электромобил", "Electric"},
	},
	"motorcycles": {
		Name:   "Мототехника",
		Labels: []string{"Мотоцикл", "Мототехника", "Квадроцикл", "Moto"},
	},
	"special": {
		Name:   "Спецтехника",
		Labels: []string{"Спецтехника", "Special"},
	},
	"trucks": {
		Name:   "Грузовики",
		Labels: []string{"Грузов", "Truck"},
	},
	"featured": {
		Name:   "На главной",
		Labels: []string{"Главная", "На главной"},
	},
}

// Resolve returns the legacy labels that satisfy a slug.
// It never returns an empty set: an unmapped slug falls back to itself as a
// substring match, and an empty slug yields {""}, which matches every record.
func Resolve(slug string) []string {
	key := strings.ToLower(strings.TrimSpace(slug))
	if def, ok := categoryTable[key]; ok {
		labels := make([]string, len(def.Labels))
		copy(labels, def.Labels)
		return labels
	}
	return []string{strings.TrimSpace(slug)}
}

// DisplayName returns the human label for a slug, or the raw slug when unmapped.
// Never blank.
func DisplayName(slug string) string {
	key := strings.ToLower(strings.TrimSpace(slug))
	if key == "" {
		return AllCategoriesName
	}
	if def, ok := categoryTable[key]; ok {
		return def.Name
	}
	return strings.TrimSpace(slug)
}

// IsKnownSlug reports whether the slug has an explicit table entry.
func IsKnownSlug(slug string) bool {
	_, ok := categoryTable[strings.ToLower(strings.TrimSpace(slug))]
	return ok
}

// Slugs returns all mapped slugs in alphabetical order.
func Slugs() []string {
	slugs := make([]string, 0, len(categoryTable))
	for slug := range categoryTable {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// SlugsFor returns every slug whose labels occur in a stored category value.
// A compound value can satisfy several slugs.
func SlugsFor(category string) []string {
	var slugs []string
	for _, slug := range Slugs() {
		for _, label := range categoryTable[slug].Labels {
			if ContainsFold(category, label) {
				slugs = append(slugs, slug)
				break
			}
		}
	}
	return slugs
}

// ContainsFold reports whether substr occurs in s under Unicode case folding.
// This is the single matching rule for category labels.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}
