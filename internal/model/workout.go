package model

type Workout struct {
	BaseModel
	Name        string `gorm:"size:255;not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"default:false;index" json:"isPublic"`
	CreatorID   uint   `gorm:"index" json:"creatorId"`

	// Ordered by ExerciseWorkout.Order; the order values form a contiguous
	// 1..N sequence maintained by ReconcileService.
	ExerciseWorkouts []ExerciseWorkout `gorm:"foreignKey:WorkoutID" json:"exerciseWorkouts,omitempty"`
	WorkoutOfferings []WorkoutOffering `gorm:"foreignKey:WorkoutID" json:"workoutOfferings,omitempty"`
}

func (Workout) TableName() string {
	return "workouts"
}

// TotalPoints is the maximum score attainable across the workout.
func (w *Workout) TotalPoints() float64 {
	var total float64
	for _, ew := range w.ExerciseWorkouts {
		total += ew.Points
	}
	return total
}
