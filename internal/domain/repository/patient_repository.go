package repository

import (
	"imagulator/internal/domain/entity"

	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(db *gorm.DB, patient *entity.Patient) error
	FindByCode(db *gorm.DB, code string) (*entity.Patient, error)
	FindByID(db *gorm.DB, id uint) (*entity.Patient, error)
	ListByDoctor(db *gorm.DB, doctorUsername string) ([]entity.Patient, error)
}
