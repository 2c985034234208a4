package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/motorcat/internal/catalog"
	"github.com/JonMunkholm/motorcat/internal/logging"
	"github.com/JonMunkholm/motorcat/internal/settings"
)

// CategoryInfo describes one browse category.
type CategoryInfo struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// CatalogPage is the response of the listing endpoints.
type CatalogPage struct {
	Category CategoryInfo       `json:"category"`
	Items    []catalog.Item     `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Pages    int                `json:"pages"`
	Filter   catalog.FilterSpec `json:"filter"`
}

// Facets lists the values a listing can be narrowed by.
type Facets struct {
	Brands []string `json:"brands"`
	Models []string `json:"models"`
}

// loadSettings returns site settings, or empty settings when the backend
// fails. Settings only decorate responses.
func (s *Server) loadSettings(r *http.Request) settings.Settings {
	if s.settings == nil {
		return settings.Settings{}.Normalize()
	}
	st, err := s.settings.Load(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn("settings unavailable", "error", err)
		return settings.Settings{}.Normalize()
	}
	return st
}

func categoryInfo(slug string, st settings.Settings) CategoryInfo {
	c := st.Category(slug)
	return CategoryInfo{
		Slug:        slug,
		Name:        catalog.DisplayName(slug),
		Description: c.Description,
		Image:       c.Image,
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	st := s.loadSettings(r)

	slugs := catalog.Slugs()
	out := make([]CategoryInfo, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, categoryInfo(slug, st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	spec := catalog.ParseFilterSpec(slug, r.URL.Query())
	pred := s.builder.Build(slug, spec)

	items, err := s.store.FindMany(ctx, pred, spec.Page())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	total, err := s.store.Count(ctx, pred)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	if items == nil {
		items = []catalog.Item{}
	}
	writeJSON(w, http.StatusOK, CatalogPage{
		Category: categoryInfo(spec.Category, s.loadSettings(r)),
		Items:    items,
		Total:    total,
		Page:     spec.PageNumber(),
		Pages:    pageCount(total, spec.Limit),
		Filter:   spec,
	})
}

// handleFacets returns the brands present in a category and, when brands are
// selected, the models of those brands.
func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	spec := catalog.ParseFilterSpec(slug, r.URL.Query())

	brands, err := s.store.Distinct(ctx, catalog.FieldBrand, s.builder.Build(slug, catalog.FilterSpec{}))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	models := []string{}
	if len(spec.Brands) > 0 {
		models, err = s.store.Distinct(ctx, catalog.FieldModel,
			s.builder.Build(slug, catalog.FilterSpec{Brands: spec.Brands}))
		if err != nil {
			respondError(w, r, err, 0)
			return
		}
	}

	if brands == nil {
		brands = []string{}
	}
	if models == nil {
		models = []string{}
	}
	writeJSON(w, http.StatusOK, Facets{Brands: brands, Models: models})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func pageCount(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
