package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want []string
	}{
		{"known slug", "suv", []string{"Внедорожник", "Джип", "SUV"}},
		{"known slug is case-insensitive", " SUV ", []string{"Внедорожник", "Джип", "SUV"}},
		{"unknown slug falls back to itself", "cabriolet", []string{"cabriolet"}},
		{"empty slug", "", []string{""}},
		{"whitespace slug", "   ", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.slug)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.slug, diff)
			}
		})
	}
}

func TestResolve_NeverEmpty(t *testing.T) {
	inputs := append(Slugs(), "", " ", "unknown", "Седан", "../etc", "%")
	for _, slug := range inputs {
		if got := Resolve(slug); len(got) == 0 {
			t.Errorf("Resolve(%q) returned an empty set", slug)
		}
	}
}

func TestResolve_ReturnsCopy(t *testing.T) {
	labels := Resolve("sedan")
	labels[0] = "mutated"

	if got := Resolve("sedan")[0]; got == "mutated" {
		t.Error("Resolve() exposed the static table to mutation")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"suv", "Внедорожники"},
		{"featured", "На главной"},
		{"", AllCategoriesName},
		{"cabriolet", "cabriolet"},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.slug); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}

	for _, slug := range Slugs() {
		if DisplayName(slug) == "" {
			t.Errorf("DisplayName(%q) is blank", slug)
		}
	}
}

func TestIsKnownSlug(t *testing.T) {
	if !IsKnownSlug("Crossover") {
		t.Error("IsKnownSlug(\"Crossover\") = false, want true")
	}
	if IsKnownSlug("cabriolet") {
		t.Error("IsKnownSlug(\"cabriolet\") = true, want false")
	}
}

func TestSlugsFor(t *testing.T) {
	tests := []struct {
		category string
		want     []string
	}{
		{"Седаны;Главная", []string{"featured", "sedan"}},
		{"внедорожники", []string{"suv"}},
		{"Crossover / SUV", []string{"crossover", "suv"}},
		{"Кабриолет", nil},
	}

	for _, tt := range tests {
		got := SlugsFor(tt.category)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SlugsFor(%q) mismatch (-want +got):\n%s", tt.category, diff)
		}
	}
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		s, substr string
		want      bool
	}{
		{"Внедорожники", "внедорожник", true},
		{"ВНЕДОРОЖНИК", "Внедорожник", true},
		{"Седаны;Главная", "главная", true},
		{"Crossover", "CROSS", true},
		{"Sedan", "Седан", false},
		{"anything", "", true},
		{"", "x", false},
	}

	for _, tt := range tests {
		if got := ContainsFold(tt.s, tt.substr); got != tt.want {
			t.Errorf("ContainsFold(%q, %q) = %v, want %v", tt.s, tt.substr, got, tt.want)
		}
	}
}
