package entity

import (
	"time"
)

// User represents the authentication table. Doctors are the only role
// observed in practice but the column keeps the model open.
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Role      string    `gorm:"type:varchar(32);not null;default:doctor" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patients []Patient `gorm:"foreignKey:DoctorUsername;references:Username" json:"patients,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)
