package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/motorcat/internal/importer"
)

// multipartOverhead is the slack allowed on top of the file size limit for
// form boundaries and other fields.
const multipartOverhead = 1 << 20

// ImportList is the response of the import history endpoint.
type ImportList struct {
	Runs    []importer.Run         `json:"runs"`
	Limiter importer.LimiterStatus `json:"limiter"`
}

// handleImport reads a multipart "file" field and reconciles it into the
// catalog. Row errors are part of a successful response.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := int64(s.cfg.Import.MaxFileSize)
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, importer.ErrFileTooLarge, 0)
			return
		}
		respondError(w, r, errNoFile, 0)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, 0)
		return
	}
	defer file.Close()

	log := staffLogger(r)
	log.Info("import requested", "file", header.Filename, "size", header.Size)

	run, err := s.imports.Import(r.Context(), file, header.Filename)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		n = 0
	}
	writeJSON(w, http.StatusOK, ImportList{
		Runs:    s.imports.Recent(n),
		Limiter: s.imports.Limiter().Status(),
	})
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	run, err := s.imports.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
