package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"imagulator/internal/delivery/dto"
	"imagulator/internal/usecase"
	"imagulator/pkg/response"
)

type JobHandler struct {
	jobUsecase usecase.JobUsecase
}

func NewJobHandler(jobUsecase usecase.JobUsecase) *JobHandler {
	return &JobHandler{jobUsecase: jobUsecase}
}

// Process fetches an image and runs the segmentation step on it.
func (h *JobHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	result, err := h.jobUsecase.Process(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoImageSource):
			response.Error(w, http.StatusUnprocessableEntity, err.Error(), nil)
		case errors.Is(err, usecase.ErrFetchFailed):
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to process image")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}
