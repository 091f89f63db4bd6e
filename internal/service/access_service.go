package service

import (
	"time"

	"workout_gym_backend/internal/model"
	"workout_gym_backend/internal/repository"
)

type DenialReason string

const (
	ReasonNotYetOpen             DenialReason = "NotYetOpen"
	ReasonPastDeadline           DenialReason = "PastDeadline"
	ReasonReviewLockedUntilClose DenialReason = "ReviewLockedUntilClose"
)

// Decision is the outcome of a policy check. Denials are expected,
// user-facing results, not errors; the reason tells the caller what to
// report.
type Decision struct {
	Allowed bool
	Reason  DenialReason
}

func Allowed() Decision {
	return Decision{Allowed: true}
}

func Denied(reason DenialReason) Decision {
	return Decision{Reason: reason}
}

// ShutdownState answers whether an offering's term has been shut down.
// Term lifecycle is owned elsewhere; the evaluator treats this as an
// opaque boolean.
type ShutdownState interface {
	IsShutdown(offering *model.WorkoutOffering) bool
}

// AccessWindow is the set of dates and time limit in force for one
// student on one offering, after extension resolution.
type AccessWindow struct {
	OpeningDate  *time.Time
	SoftDeadline *time.Time
	HardDeadline *time.Time
	TimeLimit    *int
}

// AccessService decides whether practice or review is currently permitted
// for a user on a workout offering.
type AccessService struct {
	ExtensionRepo *repository.StudentExtensionRepository
	Shutdown      ShutdownState
}

func NewAccessService(extensionRepo *repository.StudentExtensionRepository, shutdown ShutdownState) *AccessService {
	return &AccessService{
		ExtensionRepo: extensionRepo,
		Shutdown:      shutdown,
	}
}

// EffectiveWindow resolves the window for one student. An individual
// extension is resolved before any policy check so that an accommodation
// takes precedence over the offering's own dates. A field the extension
// leaves unset falls back to the offering; an extension that only moves
// the hard deadline must not erase the opening date.
func EffectiveWindow(offering *model.WorkoutOffering, ext *model.StudentExtension) AccessWindow {
	window := AccessWindow{
		OpeningDate:  offering.OpeningDate,
		SoftDeadline: offering.SoftDeadline,
		HardDeadline: offering.HardDeadline,
		TimeLimit:    offering.TimeLimit,
	}
	if ext == nil {
		return window
	}
	if ext.OpeningDate != nil {
		window.OpeningDate = ext.OpeningDate
	}
	if ext.SoftDeadline != nil {
		window.SoftDeadline = ext.SoftDeadline
	}
	if ext.HardDeadline != nil {
		window.HardDeadline = ext.HardDeadline
	}
	if ext.TimeLimit != nil {
		window.TimeLimit = ext.TimeLimit
	}
	return window
}

// WindowFor loads the user's extension, if any, and resolves the window.
func (s *AccessService) WindowFor(userID uint, offering *model.WorkoutOffering) (AccessWindow, error) {
	ext, err := s.ExtensionRepo.FindForUser(offering.ID, userID)
	if err != nil {
		return AccessWindow{}, err
	}
	return EffectiveWindow(offering, ext), nil
}

// CanPractice decides whether the user may start practicing the offering
// at the given instant. A hard deadline that has passed blocks new starts
// only; it never cancels a session already in progress, which is why the
// state machine consults this on start alone.
func (s *AccessService) CanPractice(userID uint, offering *model.WorkoutOffering, now time.Time) (Decision, error) {
	window, err := s.WindowFor(userID, offering)
	if err != nil {
		return Decision{}, err
	}
	if window.OpeningDate != nil && now.Before(*window.OpeningDate) {
		return Denied(ReasonNotYetOpen), nil
	}
	if window.HardDeadline != nil && now.After(*window.HardDeadline) {
		return Denied(ReasonPastDeadline), nil
	}
	return Allowed(), nil
}

// CanReview decides whether a finished score may be reviewed. Review is
// locked only while all three hold: the score is closed, the offering's
// policy forbids review before close, and the term is not shut down.
func (s *AccessService) CanReview(score *model.WorkoutScore, offering *model.WorkoutOffering, now time.Time) (Decision, error) {
	if offering == nil {
		return Allowed(), nil
	}
	policy := offering.WorkoutPolicy
	if score.Closed && policy != nil && policy.NoReviewBeforeClose && !s.Shutdown.IsShutdown(offering) {
		return Denied(ReasonReviewLockedUntilClose), nil
	}
	return Allowed(), nil
}
