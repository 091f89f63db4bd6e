package repository

import (
	"workout_gym_backend/internal/model"

	"gorm.io/gorm"
)

type WorkoutRepository struct {
	DB *gorm.DB
}

func NewWorkoutRepository(db *gorm.DB) *WorkoutRepository {
	return &WorkoutRepository{DB: db}
}

func (r *WorkoutRepository) FindByID(id uint) (*model.Workout, error) {
	var workout model.Workout
	err := r.DB.First(&workout, id).Error
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

// FindWithExercises loads a workout with its exercise links in list order.
func (r *WorkoutRepository) FindWithExercises(id uint) (*model.Workout, error) {
	var workout model.Workout
	err := r.DB.
		Preload("ExerciseWorkouts", func(db *gorm.DB) *gorm.DB {
			return db.Order("list_order asc")
		}).
		First(&workout, id).Error
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

// RecentPublic returns the newest public workouts for the gym landing list.
func (r *WorkoutRepository) RecentPublic(limit int) ([]model.Workout, error) {
	var workouts []model.Workout
	err := r.DB.Where("is_public = ?", true).
		Order("created_at desc").
		Limit(limit).
		Find(&workouts).Error
	return workouts, err
}
