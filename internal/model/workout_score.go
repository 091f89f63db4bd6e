package model

import "time"

// WorkoutScore accumulates one user's progress through one workout. Only
// one live row exists per (user, workout); it survives across requests
// while the transient session state lives in the session store.
type WorkoutScore struct {
	BaseModel
	UserID             uint       `gorm:"uniqueIndex:idx_score_user_workout;not null" json:"userId"`
	WorkoutID          uint       `gorm:"uniqueIndex:idx_score_user_workout;not null" json:"workoutId"`
	WorkoutOfferingID  *uint      `gorm:"index" json:"workoutOfferingId,omitempty"`
	Score              float64    `gorm:"default:0" json:"score"`
	ExercisesCompleted int        `gorm:"default:0" json:"exercisesCompleted"`
	ExercisesRemaining int        `gorm:"default:0" json:"exercisesRemaining"`
	Closed             bool       `gorm:"default:false" json:"closed"`
	LastAttemptedAt    *time.Time `json:"lastAttemptedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`

	WorkoutOffering *WorkoutOffering `gorm:"foreignKey:WorkoutOfferingID" json:"workoutOffering,omitempty"`
}

func (WorkoutScore) TableName() string {
	return "workout_scores"
}
