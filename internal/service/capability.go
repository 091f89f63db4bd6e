package service

import (
	"workout_gym_backend/internal/model"
	"workout_gym_backend/internal/repository"
)

// Capability is the authorization oracle. The core never decides
// authorization itself; controllers and search visibility ask this
// collaborator and act on the boolean.
type Capability interface {
	Check(userID uint, action string, workout *model.Workout) bool
}

// DBCapability grants management of a workout to its creator, to admins,
// and to staff of any course offering the workout is deployed to.
type DBCapability struct {
	UserRepo *repository.UserRepository
}

func NewDBCapability(userRepo *repository.UserRepository) *DBCapability {
	return &DBCapability{UserRepo: userRepo}
}

func (c *DBCapability) Check(userID uint, action string, workout *model.Workout) bool {
	if workout == nil || userID == 0 {
		return false
	}
	if workout.CreatorID == userID {
		return true
	}
	user, err := c.UserRepo.FindByID(userID)
	if err == nil && user.Role == model.Admin {
		return true
	}
	staff, err := c.UserRepo.HasStaffEnrollment(userID, workout.ID)
	if err != nil {
		return false
	}
	return staff
}
