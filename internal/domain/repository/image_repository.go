package repository

import (
	"imagulator/internal/domain/entity"

	"gorm.io/gorm"
)

type ImageRepository interface {
	Create(db *gorm.DB, image *entity.Image) error
	// ListByPatient returns images newest scan first (mri_date DESC).
	ListByPatient(db *gorm.DB, patientID uint) ([]entity.Image, error)
	FindByID(db *gorm.DB, id uint) (*entity.Image, error)
}
