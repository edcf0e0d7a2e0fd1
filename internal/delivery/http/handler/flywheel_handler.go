package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"imagulator/internal/delivery/dto"
	"imagulator/internal/infrastructure/flywheel"
	"imagulator/pkg/response"
	"imagulator/pkg/validator"

	"github.com/gorilla/mux"
)

type FlywheelHandler struct {
	provider  *flywheel.Provider
	validator *validator.CustomValidator
}

func NewFlywheelHandler(provider *flywheel.Provider, validator *validator.CustomValidator) *FlywheelHandler {
	return &FlywheelHandler{
		provider:  provider,
		validator: validator,
	}
}

// Status reports connection state without failing the request.
func (h *FlywheelHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Configured() {
		response.JSON(w, http.StatusOK, dto.FlywheelStatusResponse{
			Configured: false,
			Connected:  false,
			Message:    "FW_API_KEY not set",
		})
		return
	}

	if _, err := h.provider.Client(r.Context()); err != nil {
		response.JSON(w, http.StatusOK, dto.FlywheelStatusResponse{
			Configured: true,
			Connected:  false,
			Message:    err.Error(),
		})
		return
	}

	response.JSON(w, http.StatusOK, dto.FlywheelStatusResponse{
		Configured: true,
		Connected:  true,
		Message:    "Connected successfully",
	})
}

// GetAcquisition returns acquisition metadata and its file list.
func (h *FlywheelHandler) GetAcquisition(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}

	acq, err := client.GetAcquisition(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeBridgeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, acq)
}

// GetSession returns all acquisitions of a session with their files.
func (h *FlywheelHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w, r)
	if !ok {
		return
	}

	result, err := client.SearchBySession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeBridgeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Download fetches named files from an acquisition into the content cache and
// reports per-file outcomes.
func (h *FlywheelHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req dto.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	client, ok := h.client(w, r)
	if !ok {
		return
	}

	result, err := client.Download(r.Context(), req.AcquisitionID, req.Filenames)
	if err != nil {
		h.writeBridgeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// client resolves the shared bridge connection, writing configuration and
// connection failures as 503.
func (h *FlywheelHandler) client(w http.ResponseWriter, r *http.Request) (*flywheel.Client, bool) {
	if !h.provider.Configured() {
		response.ServiceUnavailable(w, flywheel.ErrNotConfigured.Error())
		return nil, false
	}

	client, err := h.provider.Client(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, err.Error())
		return nil, false
	}
	return client, true
}

func (h *FlywheelHandler) writeBridgeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flywheel.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, flywheel.ErrAccessDenied):
		response.Forbidden(w, err.Error())
	case errors.Is(err, flywheel.ErrConnection):
		response.ServiceUnavailable(w, err.Error())
	case errors.Is(err, flywheel.ErrAllDownloadsFailed):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	}
}
