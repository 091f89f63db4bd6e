package repository

import (
	"errors"

	"workout_gym_backend/internal/model"

	"gorm.io/gorm"
)

type WorkoutScoreRepository struct {
	DB *gorm.DB
}

func NewWorkoutScoreRepository(db *gorm.DB) *WorkoutScoreRepository {
	return &WorkoutScoreRepository{DB: db}
}

func (r *WorkoutScoreRepository) Save(score *model.WorkoutScore) error {
	return r.DB.Save(score).Error
}

// FindLive returns the user's score row for a workout, or nil when they
// have not started it yet.
func (r *WorkoutScoreRepository) FindLive(userID, workoutID uint) (*model.WorkoutScore, error) {
	var score model.WorkoutScore
	err := r.DB.Where("user_id = ? AND workout_id = ?", userID, workoutID).
		First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}
