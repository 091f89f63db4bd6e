package model

// ExerciseWorkout joins a workout to one of its exercises, carrying the
// points the exercise is worth and its position in the workout. A row is
// owned by its workout and is destroyed with it.
type ExerciseWorkout struct {
	BaseModel
	WorkoutID  uint    `gorm:"uniqueIndex:idx_workout_exercise;not null" json:"workoutId"`
	ExerciseID uint    `gorm:"uniqueIndex:idx_workout_exercise;not null" json:"exerciseId"`
	Points     float64 `gorm:"default:0" json:"points"`
	Order      int     `gorm:"column:list_order;not null" json:"order"`

	Exercise Exercise `gorm:"foreignKey:ExerciseID" json:"exercise,omitempty"`
}

func (ExerciseWorkout) TableName() string {
	return "exercise_workouts"
}
