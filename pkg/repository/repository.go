package repository

import (
	"gorm.io/gorm"
)

// Repository interface
type Repository interface {
	UserProfileI
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}
