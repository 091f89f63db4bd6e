package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrOfferingNotFound   = errors.New("workout offering not found")
	ErrCourseNotFound     = errors.New("course offering not found")
	ErrPolicyNotFound     = errors.New("workout policy not found")
	ErrInvalidPayload     = errors.New("invalid change set payload")
	ErrDuplicateExtension = errors.New("student already has an extension for this offering")
	ErrNoActiveSession    = errors.New("no active practice session")
)
