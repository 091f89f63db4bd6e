package model

import "time"

// StudentExtension grants one student adjusted dates or time limit for one
// workout offering. At most one extension may exist per (offering, user)
// pair; a second grant is a conflict, not an update.
type StudentExtension struct {
	BaseModel
	WorkoutOfferingID uint       `gorm:"uniqueIndex:idx_extension_offering_user;not null" json:"workoutOfferingId"`
	UserID            uint       `gorm:"uniqueIndex:idx_extension_offering_user;not null" json:"userId"`
	OpeningDate       *time.Time `json:"openingDate,omitempty"`
	SoftDeadline      *time.Time `json:"softDeadline,omitempty"`
	HardDeadline      *time.Time `json:"hardDeadline,omitempty"`
	TimeLimit         *int       `json:"timeLimit,omitempty"` // minutes
}

func (StudentExtension) TableName() string {
	return "student_extensions"
}
