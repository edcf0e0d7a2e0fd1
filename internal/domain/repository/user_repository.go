package repository

import (
	"imagulator/internal/domain/entity"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByUsername(db *gorm.DB, username string) (*entity.User, error)
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	// FindByIdentifier matches the identifier against username first, then
	// email.
	FindByIdentifier(db *gorm.DB, identifier string) (*entity.User, error)
	FindByID(db *gorm.DB, id uint) (*entity.User, error)
}
