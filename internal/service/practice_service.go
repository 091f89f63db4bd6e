package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workout_gym_backend/internal/model"
	"workout_gym_backend/internal/repository"
	"workout_gym_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PracticeService owns the per-user practice session lifecycle: start a
// workout, advance through its exercises, and close out the score. A user
// has at most one active session; its transient state lives in the
// session store while the cumulative score is persisted.
type PracticeService struct {
	WorkoutRepo  *repository.WorkoutRepository
	OfferingRepo *repository.WorkoutOfferingRepository
	ScoreRepo    *repository.WorkoutScoreRepository
	Access       *AccessService
	Sessions     SessionStore
	DB           *gorm.DB
}

func NewPracticeService(
	workoutRepo *repository.WorkoutRepository,
	offeringRepo *repository.WorkoutOfferingRepository,
	scoreRepo *repository.WorkoutScoreRepository,
	access *AccessService,
	sessions SessionStore,
	db *gorm.DB,
) *PracticeService {
	return &PracticeService{
		WorkoutRepo:  workoutRepo,
		OfferingRepo: offeringRepo,
		ScoreRepo:    scoreRepo,
		Access:       access,
		Sessions:     sessions,
		DB:           db,
	}
}

// StartResult reports either the first exercise to present, a policy
// denial, or immediate completion for an empty workout.
type StartResult struct {
	ExerciseID uint         `json:"exerciseId,omitempty"`
	Completed  bool         `json:"completed,omitempty"`
	Denied     DenialReason `json:"denied,omitempty"`
}

// AdvanceResult reports the next exercise or session completion.
type AdvanceResult struct {
	ExerciseID uint `json:"exerciseId,omitempty"`
	Completed  bool `json:"completed,omitempty"`
	TimedOut   bool `json:"timedOut,omitempty"`
}

// CloseResult is the finalized outcome of a session.
type CloseResult struct {
	Score              float64            `json:"score"`
	MaxScore           float64            `json:"maxScore"`
	ExercisesCompleted int                `json:"exercisesCompleted"`
	ExercisesRemaining int                `json:"exercisesRemaining"`
	Closed             bool               `json:"closed"`
	Feedback           []ExerciseFeedback `json:"feedback"`
}

// Start opens a practice session for the user on a workout. When an
// offering is named, its policy window gates the start; a denial is an
// expected outcome carried in the result, not an error.
func (s *PracticeService) Start(ctx context.Context, userID, workoutID uint, offeringID *uint, now time.Time) (*StartResult, error) {
	workout, err := s.WorkoutRepo.FindWithExercises(workoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrWorkoutNotFound
		}
		return nil, err
	}

	var offering *model.WorkoutOffering
	var window AccessWindow
	if offeringID != nil {
		offering, err = s.OfferingRepo.FindByID(*offeringID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrOfferingNotFound
			}
			return nil, err
		}
		if offering.WorkoutID != workoutID {
			return nil, util.ErrOfferingNotFound
		}

		decision, err := s.Access.CanPractice(userID, offering, now)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return &StartResult{Denied: decision.Reason}, nil
		}
		window, err = s.Access.WindowFor(userID, offering)
		if err != nil {
			return nil, err
		}
	}

	var score *model.WorkoutScore
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.WorkoutScore
		err := tx.Where("user_id = ? AND workout_id = ?", userID, workoutID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			score = &model.WorkoutScore{
				UserID:             userID,
				WorkoutID:          workoutID,
				WorkoutOfferingID:  offeringID,
				Score:              0,
				ExercisesCompleted: 0,
				ExercisesRemaining: len(workout.ExerciseWorkouts),
			}
			return tx.Create(score).Error
		}
		if err != nil {
			return err
		}
		score = &existing
		score.LastAttemptedAt = &now
		if offeringID != nil {
			score.WorkoutOfferingID = offeringID
		}
		return tx.Save(score).Error
	})
	if err != nil {
		return nil, err
	}

	// A score closed by an earlier time-limit expiry locks review until
	// the term shuts down; re-entering practice is blocked the same way.
	if offering != nil {
		decision, err := s.Access.CanReview(score, offering, now)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return &StartResult{Denied: decision.Reason}, nil
		}
	}

	session := &PracticeSession{
		AttemptID:      uuid.New().String(),
		CurrentWorkout: workoutID,
		OfferingID:     offeringID,
		StartedAt:      now,
	}
	for _, link := range workout.ExerciseWorkouts {
		session.Remaining = append(session.Remaining, link.ExerciseID)
	}
	if window.TimeLimit != nil && *window.TimeLimit > 0 {
		cutoff := now.Add(time.Duration(*window.TimeLimit) * time.Minute)
		session.Cutoff = &cutoff
	}

	if err := s.Sessions.Save(ctx, userID, session); err != nil {
		return nil, err
	}

	next := nextExercise(session)
	if next == 0 {
		return &StartResult{Completed: true}, nil
	}
	return &StartResult{ExerciseID: next}, nil
}

// Advance records the prior exercise's outcome, if one is supplied, and
// selects the next exercise in list order, skipping anything already seen
// in this pass. When every exercise has been seen it reports completion
// instead.
func (s *PracticeService) Advance(ctx context.Context, userID uint, prior *ExerciseFeedback, now time.Time) (*AdvanceResult, error) {
	session, err := s.Sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, util.ErrNoActiveSession
	}

	if session.Cutoff != nil && now.After(*session.Cutoff) {
		if err := s.closeScore(session.CurrentWorkout, userID, now); err != nil {
			return nil, err
		}
		return &AdvanceResult{Completed: true, TimedOut: true}, nil
	}

	if prior != nil && !session.HasSeen(prior.ExerciseID) {
		if err := s.recordOutcome(session, userID, prior, now); err != nil {
			return nil, err
		}
		if err := s.Sessions.Save(ctx, userID, session); err != nil {
			return nil, err
		}
	}

	next := nextExercise(session)
	if next == 0 {
		return &AdvanceResult{Completed: true}, nil
	}
	return &AdvanceResult{ExerciseID: next}, nil
}

// Close finalizes the session: it reads the accumulated score and
// feedback, clears every transient session field, and reports the result.
// The user has no active session afterwards.
func (s *PracticeService) Close(ctx context.Context, userID uint, now time.Time) (*CloseResult, error) {
	session, err := s.Sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, util.ErrNoActiveSession
	}

	workout, err := s.WorkoutRepo.FindWithExercises(session.CurrentWorkout)
	if err != nil {
		return nil, err
	}
	score, err := s.ScoreRepo.FindLive(userID, session.CurrentWorkout)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, fmt.Errorf("workout score missing for user %d on workout %d", userID, session.CurrentWorkout)
	}

	if score.ExercisesRemaining == 0 && score.CompletedAt == nil {
		score.CompletedAt = &now
		if err := s.ScoreRepo.Save(score); err != nil {
			return nil, err
		}
	}

	if err := s.Sessions.Clear(ctx, userID); err != nil {
		return nil, err
	}

	return &CloseResult{
		Score:              score.Score,
		MaxScore:           workout.TotalPoints(),
		ExercisesCompleted: score.ExercisesCompleted,
		ExercisesRemaining: score.ExercisesRemaining,
		Closed:             score.Closed,
		Feedback:           session.Feedback,
	}, nil
}

// recordOutcome folds one exercise result into the session and the
// persisted score. Awards are clamped to [0, link points]; the completed
// and remaining counters never leave their valid ranges.
func (s *PracticeService) recordOutcome(session *PracticeSession, userID uint, prior *ExerciseFeedback, now time.Time) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var link model.ExerciseWorkout
		err := tx.Where("workout_id = ? AND exercise_id = ?", session.CurrentWorkout, prior.ExerciseID).
			First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", util.ErrExerciseNotFound, prior.ExerciseID)
		}
		if err != nil {
			return err
		}

		awarded := prior.Points
		if awarded < 0 {
			awarded = 0
		}
		if awarded > link.Points {
			awarded = link.Points
		}

		var score model.WorkoutScore
		if err := tx.Where("user_id = ? AND workout_id = ?", userID, session.CurrentWorkout).
			First(&score).Error; err != nil {
			return err
		}

		var total int64
		if err := tx.Model(&model.ExerciseWorkout{}).
			Where("workout_id = ?", session.CurrentWorkout).
			Count(&total).Error; err != nil {
			return err
		}

		score.Score += awarded
		if score.ExercisesCompleted < int(total) {
			score.ExercisesCompleted++
		}
		if score.ExercisesRemaining > 0 {
			score.ExercisesRemaining--
		}
		score.LastAttemptedAt = &now
		if err := tx.Save(&score).Error; err != nil {
			return err
		}

		session.Seen = append(session.Seen, prior.ExerciseID)
		session.Feedback = append(session.Feedback, ExerciseFeedback{
			ExerciseID: prior.ExerciseID,
			Points:     awarded,
			MaxPoints:  link.Points,
			Correct:    prior.Correct,
			Comment:    prior.Comment,
		})
		return nil
	})
}

// closeScore marks the score closed when the session cutoff has passed.
// The closed flag is what later locks review under a no-review-before-
// close policy.
func (s *PracticeService) closeScore(workoutID, userID uint, now time.Time) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var score model.WorkoutScore
		err := tx.Where("user_id = ? AND workout_id = ?", userID, workoutID).First(&score).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if score.Closed {
			return nil
		}
		score.Closed = true
		score.LastAttemptedAt = &now
		return tx.Save(&score).Error
	})
}

// nextExercise picks the first remaining exercise not yet seen in this
// pass, or 0 when the pass is complete.
func nextExercise(session *PracticeSession) uint {
	for _, id := range session.Remaining {
		if !session.HasSeen(id) {
			return id
		}
	}
	return 0
}
