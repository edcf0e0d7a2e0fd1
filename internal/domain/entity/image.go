package entity

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrEmptyStoragePath is returned when an image row would reference no file.
var ErrEmptyStoragePath = errors.New("image storage path must not be empty")

// Image is an MRI attachment belonging to a patient. StoragePath references
// a file owned by the storage layer; the row must never be written before the
// file is confirmed on disk.
type Image struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID        uint      `gorm:"not null;index" json:"patient_id"`
	UploaderUsername string    `gorm:"type:varchar(64);not null" json:"uploader_username"`
	MRIDate          string    `gorm:"column:mri_date;type:varchar(10);not null;index" json:"mri_date"`
	ImageName        string    `gorm:"type:varchar(255);not null" json:"image_name"`
	StoragePath      string    `gorm:"type:text;not null" json:"storage_path"`
	Modality         string    `gorm:"type:varchar(32);not null" json:"modality"`
	Notes            string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Image) TableName() string {
	return "images"
}

// BeforeCreate refuses rows without a storage path. Historically rows with an
// empty path reached the table and broke the viewer; the invariant is now
// enforced at write time.
func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.StoragePath == "" {
		return ErrEmptyStoragePath
	}
	return nil
}
