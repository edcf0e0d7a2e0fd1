package entity

import (
	"time"
)

// Patient is a clinical record owned by the doctor who registered it.
type Patient struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorUsername    string    `gorm:"type:varchar(64);not null;index" json:"doctor_username"`
	PatientCode       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"patient_code"`
	Birthdate         string    `gorm:"type:varchar(10);not null" json:"birthdate"`
	Sex               string    `gorm:"type:char(1);not null" json:"sex"`
	ClinicalDiagnosis string    `gorm:"type:text" json:"clinical_diagnosis,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Images []Image `gorm:"foreignKey:PatientID" json:"images,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// Sex constants
const (
	SexMale   = "M"
	SexFemale = "F"
)
