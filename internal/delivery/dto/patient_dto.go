package dto

import "time"

// ImageUpload describes one attachment in a patient submission. FileField
// names the multipart file part carrying the bytes; a group missing any
// required member is rejected as a unit.
type ImageUpload struct {
	MRIDate   string `json:"mri_date" validate:"required,datetime=2006-01-02"`
	Modality  string `json:"modality" validate:"required,min=1,max=32"`
	Notes     string `json:"notes" validate:"max=2000"`
	FileField string `json:"file_field" validate:"required"`
}

type NewPatientRequest struct {
	PatientCode       string        `json:"patient_code" validate:"required,min=1,max=64"`
	Birthdate         string        `json:"birthdate" validate:"required,datetime=2006-01-02"`
	Sex               string        `json:"sex" validate:"required,oneof=M F"`
	ClinicalDiagnosis string        `json:"clinical_diagnosis" validate:"max=2000"`
	Images            []ImageUpload `json:"images" validate:"dive"`
}

// ImageOutcome reports the per-image result of a patient submission.
type ImageOutcome struct {
	FileField   string `json:"file_field"`
	Saved       bool   `json:"saved"`
	StoragePath string `json:"storage_path,omitempty"`
	Error       string `json:"error,omitempty"`
}

type PatientResponse struct {
	ID                uint      `json:"id"`
	DoctorUsername    string    `json:"doctor_username"`
	PatientCode       string    `json:"patient_code"`
	Birthdate         string    `json:"birthdate"`
	Sex               string    `json:"sex"`
	ClinicalDiagnosis string    `json:"clinical_diagnosis,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type NewPatientResponse struct {
	Patient     PatientResponse `json:"patient"`
	ImagesSaved int             `json:"images_saved"`
	Results     []ImageOutcome  `json:"results"`
}

type ImageResponse struct {
	ID               uint      `json:"id"`
	PatientID        uint      `json:"patient_id"`
	UploaderUsername string    `json:"uploader_username"`
	MRIDate          string    `json:"mri_date"`
	ImageName        string    `json:"image_name"`
	StoragePath      string    `json:"storage_path"`
	Modality         string    `json:"modality"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
