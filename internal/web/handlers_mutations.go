package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxJSONBody bounds JSON request bodies on staff endpoints.
const maxJSONBody = 1 << 20

// DeleteResult reports how many records a delete removed.
type DeleteResult struct {
	Deleted int64 `json:"deleted"`
}

type deleteItemsRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, 0)
		return
	}
	staffLogger(r).Info("item deleted", "id", id)
	writeJSON(w, http.StatusOK, DeleteResult{Deleted: 1})
}

func (s *Server) handleDeleteItems(w http.ResponseWriter, r *http.Request) {
	var req deleteItemsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, 0)
		return
	}

	n, err := s.store.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	staffLogger(r).Info("items deleted", "requested", len(req.IDs), "deleted", n)
	writeJSON(w, http.StatusOK, DeleteResult{Deleted: n})
}

// handlePurge removes every listing. It requires ?confirm=yes.
func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "yes" {
		respondError(w, r, errConfirmationRequired, 0)
		return
	}

	n, err := s.store.DeleteAll(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	staffLogger(r).Warn("catalog purged", "deleted", n)
	writeJSON(w, http.StatusOK, DeleteResult{Deleted: n})
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}
