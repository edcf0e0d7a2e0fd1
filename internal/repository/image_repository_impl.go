package repository

import (
	"imagulator/internal/domain/entity"
	domainRepo "imagulator/internal/domain/repository"

	"gorm.io/gorm"
)

type imageRepository struct{}

func NewImageRepository() domainRepo.ImageRepository {
	return &imageRepository{}
}

func (r *imageRepository) Create(db *gorm.DB, image *entity.Image) error {
	return db.Create(image).Error
}

func (r *imageRepository) ListByPatient(db *gorm.DB, patientID uint) ([]entity.Image, error) {
	var images []entity.Image
	err := db.Where("patient_id = ?", patientID).Order("mri_date DESC").Find(&images).Error
	return images, err
}

func (r *imageRepository) FindByID(db *gorm.DB, id uint) (*entity.Image, error) {
	var image entity.Image
	err := db.Where("id = ?", id).First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}
