package repository

import (
	"errors"

	"workout_gym_backend/internal/model"

	"gorm.io/gorm"
)

type StudentExtensionRepository struct {
	DB *gorm.DB
}

func NewStudentExtensionRepository(db *gorm.DB) *StudentExtensionRepository {
	return &StudentExtensionRepository{DB: db}
}

func (r *StudentExtensionRepository) Create(ext *model.StudentExtension) error {
	return r.DB.Create(ext).Error
}

// FindForUser returns the user's extension for an offering, or nil when
// none exists. Absence is an answer here, not an error.
func (r *StudentExtensionRepository) FindForUser(offeringID, userID uint) (*model.StudentExtension, error) {
	var ext model.StudentExtension
	err := r.DB.Where("workout_offering_id = ? AND user_id = ?", offeringID, userID).
		First(&ext).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ext, nil
}
