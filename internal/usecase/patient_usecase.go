package usecase

import (
	"context"
	"errors"
	"io"

	"imagulator/internal/converter"
	"imagulator/internal/delivery/dto"
	"imagulator/internal/domain/entity"
	"imagulator/internal/domain/repository"
	"imagulator/internal/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientCodeExists = errors.New("patient code already exists")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrNotPatientOwner   = errors.New("patient belongs to another doctor")
	ErrFilePartMissing   = errors.New("file part missing for image entry")
)

// ImageFile carries one uploaded attachment from the transport layer.
type ImageFile struct {
	Filename string
	Reader   io.Reader
}

type PatientUsecase interface {
	// CreatePatient commits the patient, then saves each image entry
	// independently, reporting per-image outcomes. Conflict on a duplicate
	// patient code aborts the whole submission.
	CreatePatient(ctx context.Context, doctorUsername string, req *dto.NewPatientRequest, files map[string]ImageFile) (*dto.NewPatientResponse, error)
	ListPatients(ctx context.Context, doctorUsername string) ([]dto.PatientResponse, error)
	ListImages(ctx context.Context, doctorUsername, patientCode string) ([]dto.ImageResponse, error)
}

type patientUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	patientRepo repository.PatientRepository
	imageRepo   repository.ImageRepository
	store       *storage.Store
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	imageRepo repository.ImageRepository,
	store *storage.Store,
) PatientUsecase {
	return &patientUsecase{
		db:          db,
		log:         log,
		patientRepo: patientRepo,
		imageRepo:   imageRepo,
		store:       store,
	}
}

func (u *patientUsecase) CreatePatient(ctx context.Context, doctorUsername string, req *dto.NewPatientRequest, files map[string]ImageFile) (*dto.NewPatientResponse, error) {
	patient := &entity.Patient{
		DoctorUsername:    doctorUsername,
		PatientCode:       req.PatientCode,
		Birthdate:         req.Birthdate,
		Sex:               req.Sex,
		ClinicalDiagnosis: req.ClinicalDiagnosis,
	}

	// The unique index on patient_code arbitrates concurrent submissions.
	if err := u.patientRepo.Create(u.db.WithContext(ctx), patient); err != nil {
		if isDuplicateKeyError(err, "patient_code") {
			return nil, ErrPatientCodeExists
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	results := make([]dto.ImageOutcome, 0, len(req.Images))
	saved := 0
	for seq, img := range req.Images {
		outcome := u.saveImage(ctx, doctorUsername, patient, seq, img, files)
		if outcome.Saved {
			saved++
		}
		results = append(results, outcome)
	}

	u.log.Infof("Patient %s created by %s with %d/%d images saved",
		patient.PatientCode, doctorUsername, saved, len(req.Images))

	return &dto.NewPatientResponse{
		Patient:     converter.PatientToResponse(patient),
		ImagesSaved: saved,
		Results:     results,
	}, nil
}

// saveImage persists one attachment: bytes land on disk first, and the
// database row is written only after the file is confirmed. A failure at any
// step is reported in the outcome without touching the other images.
func (u *patientUsecase) saveImage(ctx context.Context, doctorUsername string, patient *entity.Patient, seq int, img dto.ImageUpload, files map[string]ImageFile) dto.ImageOutcome {
	outcome := dto.ImageOutcome{FileField: img.FileField}

	file, ok := files[img.FileField]
	if !ok {
		outcome.Error = ErrFilePartMissing.Error()
		return outcome
	}

	relPath, err := u.store.Save(patient.PatientCode, img.Modality, seq, file.Reader, file.Filename)
	if err != nil {
		u.log.Warnf("Failed to store image %s for patient %s: %+v", img.FileField, patient.PatientCode, err)
		outcome.Error = err.Error()
		return outcome
	}

	row := &entity.Image{
		PatientID:        patient.ID,
		UploaderUsername: doctorUsername,
		MRIDate:          img.MRIDate,
		ImageName:        file.Filename,
		StoragePath:      relPath,
		Modality:         img.Modality,
		Notes:            img.Notes,
	}
	if err := u.imageRepo.Create(u.db.WithContext(ctx), row); err != nil {
		u.log.Warnf("Failed to record image %s for patient %s: %+v", img.FileField, patient.PatientCode, err)
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Saved = true
	outcome.StoragePath = relPath
	return outcome
}

func (u *patientUsecase) ListPatients(ctx context.Context, doctorUsername string) ([]dto.PatientResponse, error) {
	patients, err := u.patientRepo.ListByDoctor(u.db.WithContext(ctx), doctorUsername)
	if err != nil {
		u.log.Warnf("Failed to list patients for %s: %+v", doctorUsername, err)
		return nil, err
	}
	return converter.PatientsToResponse(patients), nil
}

func (u *patientUsecase) ListImages(ctx context.Context, doctorUsername, patientCode string) ([]dto.ImageResponse, error) {
	patient, err := u.patientRepo.FindByCode(u.db.WithContext(ctx), patientCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if patient.DoctorUsername != doctorUsername {
		return nil, ErrNotPatientOwner
	}

	images, err := u.imageRepo.ListByPatient(u.db.WithContext(ctx), patient.ID)
	if err != nil {
		u.log.Warnf("Failed to list images for %s: %+v", patientCode, err)
		return nil, err
	}
	return converter.ImagesToResponse(images), nil
}
