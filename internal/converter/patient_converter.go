package converter

import (
	"imagulator/internal/delivery/dto"
	"imagulator/internal/domain/entity"
)

func PatientToResponse(patient *entity.Patient) dto.PatientResponse {
	return dto.PatientResponse{
		ID:                patient.ID,
		DoctorUsername:    patient.DoctorUsername,
		PatientCode:       patient.PatientCode,
		Birthdate:         patient.Birthdate,
		Sex:               patient.Sex,
		ClinicalDiagnosis: patient.ClinicalDiagnosis,
		CreatedAt:         patient.CreatedAt,
		UpdatedAt:         patient.UpdatedAt,
	}
}

func PatientsToResponse(patients []entity.Patient) []dto.PatientResponse {
	out := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		out = append(out, PatientToResponse(&patients[i]))
	}
	return out
}

func ImageToResponse(image *entity.Image) dto.ImageResponse {
	return dto.ImageResponse{
		ID:               image.ID,
		PatientID:        image.PatientID,
		UploaderUsername: image.UploaderUsername,
		MRIDate:          image.MRIDate,
		ImageName:        image.ImageName,
		StoragePath:      image.StoragePath,
		Modality:         image.Modality,
		Notes:            image.Notes,
		CreatedAt:        image.CreatedAt,
	}
}

func ImagesToResponse(images []entity.Image) []dto.ImageResponse {
	out := make([]dto.ImageResponse, 0, len(images))
	for i := range images {
		out = append(out, ImageToResponse(&images[i]))
	}
	return out
}
