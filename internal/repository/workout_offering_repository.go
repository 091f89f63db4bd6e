package repository

import (
	"workout_gym_backend/internal/model"

	"gorm.io/gorm"
)

type WorkoutOfferingRepository struct {
	DB *gorm.DB
}

func NewWorkoutOfferingRepository(db *gorm.DB) *WorkoutOfferingRepository {
	return &WorkoutOfferingRepository{DB: db}
}

func (r *WorkoutOfferingRepository) FindByID(id uint) (*model.WorkoutOffering, error) {
	var offering model.WorkoutOffering
	err := r.DB.
		Preload("WorkoutPolicy").
		Preload("CourseOffering").
		Preload("CourseOffering.Term").
		First(&offering, id).Error
	if err != nil {
		return nil, err
	}
	return &offering, nil
}
