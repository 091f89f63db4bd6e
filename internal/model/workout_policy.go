package model

// WorkoutPolicy is a shared, read-only bundle of access flags referenced by
// any number of workout offerings. Reconciliation never mutates one.
type WorkoutPolicy struct {
	BaseModel
	Name                  string `gorm:"size:255" json:"name"`
	Description           string `gorm:"type:text" json:"description"`
	NoReviewBeforeClose   bool   `gorm:"default:false" json:"noReviewBeforeClose"`
	InvisibleBeforeReview bool   `gorm:"default:false" json:"invisibleBeforeReview"`
	HideFeedback          bool   `gorm:"default:false" json:"hideFeedback"`
}

func (WorkoutPolicy) TableName() string {
	return "workout_policies"
}
