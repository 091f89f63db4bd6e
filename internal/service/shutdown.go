package service

import (
	"time"

	"workout_gym_backend/internal/model"
)

// TermShutdown reports an offering as shut down once its term has ended.
// Offerings loaded without their term are treated as live.
type TermShutdown struct {
	Now func() time.Time
}

func NewTermShutdown() *TermShutdown {
	return &TermShutdown{Now: time.Now}
}

func (s *TermShutdown) IsShutdown(offering *model.WorkoutOffering) bool {
	if offering == nil || offering.CourseOffering == nil {
		return false
	}
	term := offering.CourseOffering.Term
	if term.EndsOn.IsZero() {
		return false
	}
	return s.Now().After(term.EndsOn)
}
