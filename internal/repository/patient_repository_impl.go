package repository

import (
	"imagulator/internal/domain/entity"
	domainRepo "imagulator/internal/domain/repository"

	"gorm.io/gorm"
)

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

func (r *patientRepository) Create(db *gorm.DB, patient *entity.Patient) error {
	return db.Create(patient).Error
}

func (r *patientRepository) FindByCode(db *gorm.DB, code string) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.Where("patient_code = ?", code).First(&patient).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByID(db *gorm.DB, id uint) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.Where("id = ?", id).First(&patient).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) ListByDoctor(db *gorm.DB, doctorUsername string) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := db.Where("doctor_username = ?", doctorUsername).Order("created_at DESC").Find(&patients).Error
	return patients, err
}
