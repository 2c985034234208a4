package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/motorcat/internal/settings"
)

var errSettingsDisabled = errors.New("settings backend not configured")

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		respondError(w, r, errSettingsDisabled, http.StatusServiceUnavailable)
		return
	}
	st, err := s.settings.Load(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handlePutSettings replaces the whole settings document.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		respondError(w, r, errSettingsDisabled, http.StatusServiceUnavailable)
		return
	}

	var st settings.Settings
	if err := decodeJSON(w, r, &st); err != nil {
		respondError(w, r, err, 0)
		return
	}
	st = st.Normalize()

	if err := s.settings.Save(r.Context(), st); err != nil {
		respondError(w, r, err, 0)
		return
	}
	staffLogger(r).Info("settings updated",
		"categories", len(st.Categories),
		"values", len(st.Values),
	)
	writeJSON(w, http.StatusOK, st)
}
