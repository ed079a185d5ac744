package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/andresmejia3/bbtface/internal/gallery"
	"github.com/andresmejia3/bbtface/internal/similarity"
	"github.com/andresmejia3/bbtface/internal/types"
	"github.com/andresmejia3/bbtface/internal/web/static"
)

// FaceLister supplies the stored gallery.
type FaceLister interface {
	ListFaces(ctx context.Context, section string) ([]types.Face, error)
}

// FacesHandler serves the face endpoints.
type FacesHandler struct {
	faces     FaceLister
	dim       int
	threshold float64
	workers   int
}

// NewFacesHandler creates a handler backed by faces. dim is the expected
// descriptor length (0 accepts any), threshold the default match cut-off.
func NewFacesHandler(faces FaceLister, dim int, threshold float64, workers int) *FacesHandler {
	return &FacesHandler{faces: faces, dim: dim, threshold: threshold, workers: workers}
}

// MatchRequest is the body of POST /faces/match.
type MatchRequest struct {
	Descriptor types.Descriptor `json:"descriptor"`
	Threshold  *float64         `json:"threshold,omitempty"`
	Limit      int              `json:"limit,omitempty"`
	Section    string           `json:"section,omitempty"`
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, types.ErrorResult{Error: message})
}

// Index serves the recognition page.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(static.Index())
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// List returns every stored face, optionally filtered by ?section=.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	faces, err := h.faces.ListFaces(r.Context(), r.URL.Query().Get("section"))
	if err != nil {
		log.Printf("Error fetching face data: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch face data")
		return
	}
	if faces == nil {
		faces = []types.Face{}
	}
	respondJSON(w, http.StatusOK, faces)
}

// Match ranks the posted descriptor against the stored gallery.
func (h *FacesHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Descriptor) == 0 {
		respondError(w, http.StatusBadRequest, "descriptor is required")
		return
	}
	threshold := h.threshold
	if req.Threshold != nil {
		// 0 would disable the filter; callers wanting every face omit the field
		if *req.Threshold <= 0 || *req.Threshold > 2 {
			respondError(w, http.StatusBadRequest, "threshold must be greater than 0 and at most 2")
			return
		}
		threshold = *req.Threshold
	}
	if req.Limit < 0 {
		respondError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}

	if err := gallery.Validate(req.Descriptor, h.dim); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, similarity.ErrDegenerateVector) {
			status = http.StatusUnprocessableEntity
		}
		respondError(w, status, err.Error())
		return
	}

	faces, err := h.faces.ListFaces(r.Context(), req.Section)
	if err != nil {
		log.Printf("Error fetching gallery for section %q: %v", sanitizeForLog(req.Section), err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch face data")
		return
	}

	res := gallery.Match(req.Descriptor, faces, gallery.Options{
		Threshold: threshold,
		Limit:     req.Limit,
		Workers:   h.workers,
	})
	if len(res.Skipped) > 0 {
		log.Printf("Match skipped %d of %d gallery faces", len(res.Skipped), len(faces))
	}
	respondJSON(w, http.StatusOK, res)
}
