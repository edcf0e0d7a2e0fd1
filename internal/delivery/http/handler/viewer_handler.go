package handler

import (
	"errors"
	"net/http"
	"strconv"

	"imagulator/internal/imaging"
	"imagulator/internal/infrastructure/storage"
	"imagulator/pkg/response"
)

type ViewerHandler struct {
	store *storage.Store
}

func NewViewerHandler(store *storage.Store) *ViewerHandler {
	return &ViewerHandler{store: store}
}

// ListSessions reports the NIfTI files cached under the content directory.
func (h *ViewerHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := imaging.ListCachedSessions(h.store.Root())
	response.Success(w, http.StatusOK, "Cached sessions retrieved successfully", sessions)
}

// Slice renders one slice of a cached NIfTI volume as a grayscale PNG.
// Query: path (required, relative to the content dir), axis (0/1/2, default
// 2), slice (default middle).
func (h *ViewerHandler) Slice(w http.ResponseWriter, r *http.Request) {
	relPath := r.URL.Query().Get("path")
	if relPath == "" {
		response.Error(w, http.StatusBadRequest, "Missing 'path' query parameter", nil)
		return
	}

	axis := 2
	if v := r.URL.Query().Get("axis"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 || parsed > 2 {
			response.Error(w, http.StatusBadRequest, "axis must be 0, 1 or 2", nil)
			return
		}
		axis = parsed
	}

	sliceIdx := -1 // middle slice
	if v := r.URL.Query().Get("slice"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			response.Error(w, http.StatusBadRequest, "slice must be a non-negative integer", nil)
			return
		}
		sliceIdx = parsed
	}

	f, err := h.store.Open(relPath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			response.NotFound(w, "File not found in content cache")
			return
		}
		response.InternalServerError(w, "Failed to open file")
		return
	}
	defer f.Close()

	vol, err := imaging.DecodeNIfTI(f)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	png, err := imaging.SlicePNG(vol, axis, sliceIdx, imaging.DefaultWindow[0], imaging.DefaultWindow[1])
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
