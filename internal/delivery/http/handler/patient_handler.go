package handler

import (
	"encoding/json"
	"net/http"

	"imagulator/internal/delivery/dto"
	"imagulator/internal/delivery/http/middleware"
	"imagulator/internal/usecase"
	"imagulator/pkg/response"
	"imagulator/pkg/validator"

	"github.com/gorilla/mux"
)

// maxUploadMemory bounds the in-memory part of multipart parsing (32 MB);
// larger files spill to temp files.
const maxUploadMemory = 32 << 20

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

// CreatePatient accepts a multipart form: a "patient" part holding the JSON
// submission and one file part per image entry, named by the entry's
// file_field. The patient commits even when individual images fail; the
// response reports each image's outcome.
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}

	payload := r.FormValue("patient")
	if payload == "" {
		response.Error(w, http.StatusBadRequest, "Missing 'patient' form part", nil)
		return
	}

	var req dto.NewPatientRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid 'patient' JSON", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	files := make(map[string]usecase.ImageFile)
	for _, img := range req.Images {
		headers, ok := r.MultipartForm.File[img.FileField]
		if !ok || len(headers) == 0 {
			continue // reported per-image by the usecase
		}
		f, err := headers[0].Open()
		if err != nil {
			continue
		}
		defer f.Close()
		files[img.FileField] = usecase.ImageFile{
			Filename: headers[0].Filename,
			Reader:   f,
		}
	}

	result, err := h.patientUsecase.CreatePatient(r.Context(), username, &req, files)
	if err != nil {
		switch err {
		case usecase.ErrPatientCodeExists:
			response.Conflict(w, "Patient code already exists")
		default:
			response.InternalServerError(w, "Failed to create patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient created", result)
}

// ListPatients returns the authenticated doctor's patients.
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	patients, err := h.patientUsecase.ListPatients(r.Context(), username)
	if err != nil {
		response.InternalServerError(w, "Failed to list patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

// ListImages returns a patient's images, newest scan first.
func (h *PatientHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	code := mux.Vars(r)["code"]
	images, err := h.patientUsecase.ListImages(r.Context(), username, code)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrNotPatientOwner:
			response.Forbidden(w, "Patient belongs to another doctor")
		default:
			response.InternalServerError(w, "Failed to list images")
		}
		return
	}

	response.Success(w, http.StatusOK, "Images retrieved successfully", images)
}
