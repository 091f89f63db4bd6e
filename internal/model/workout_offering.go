package model

import "time"

// WorkoutOffering is one deployment of a workout to one course section,
// with its own dates and policy. Owned by the workout; its student
// extensions are owned by it in turn.
type WorkoutOffering struct {
	BaseModel
	WorkoutID        uint       `gorm:"uniqueIndex:idx_workout_course_offering;not null" json:"workoutId"`
	CourseOfferingID uint       `gorm:"uniqueIndex:idx_workout_course_offering;not null" json:"courseOfferingId"`
	WorkoutPolicyID  *uint      `gorm:"index" json:"workoutPolicyId,omitempty"`
	TimeLimit        *int       `json:"timeLimit,omitempty"` // minutes
	OpeningDate      *time.Time `json:"openingDate,omitempty"`
	SoftDeadline     *time.Time `json:"softDeadline,omitempty"`
	HardDeadline     *time.Time `json:"hardDeadline,omitempty"`
	Published        bool       `gorm:"default:false" json:"published"`
	MostRecent       bool       `gorm:"default:true" json:"mostRecent"`

	Workout           *Workout           `gorm:"foreignKey:WorkoutID" json:"workout,omitempty"`
	CourseOffering    *CourseOffering    `gorm:"foreignKey:CourseOfferingID" json:"courseOffering,omitempty"`
	WorkoutPolicy     *WorkoutPolicy     `gorm:"foreignKey:WorkoutPolicyID" json:"workoutPolicy,omitempty"`
	StudentExtensions []StudentExtension `gorm:"foreignKey:WorkoutOfferingID" json:"studentExtensions,omitempty"`
}

func (WorkoutOffering) TableName() string {
	return "workout_offerings"
}
