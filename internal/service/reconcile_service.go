package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"workout_gym_backend/internal/model"
	"workout_gym_backend/internal/repository"
	"workout_gym_backend/internal/util"

	"gorm.io/gorm"
)

// ReconcileService brings a workout's persisted exercise links, offerings
// and student extensions in line with a client-submitted desired state.
// Every apply runs in a single transaction: either the whole change set
// lands, or nothing does.
type ReconcileService struct {
	WorkoutRepo *repository.WorkoutRepository
	DB          *gorm.DB
}

func NewReconcileService(workoutRepo *repository.WorkoutRepository, db *gorm.DB) *ReconcileService {
	return &ReconcileService{
		WorkoutRepo: workoutRepo,
		DB:          db,
	}
}

// ReconcileRequest carries the desired state for one workout. The change
// sets arrive as JSON-encoded strings, the way the editor submits them;
// an empty string means an empty set.
type ReconcileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`

	RemovedExercises  string `json:"removedExercises"`  // exercise_workout ids to drop
	Exercises         string `json:"exercises"`         // [{"id":..,"points":..}] in desired order
	RemovedExtensions string `json:"removedExtensions"` // student_extension ids to drop
	RemovedOfferings  string `json:"removedOfferings"`  // workout_offering ids to drop
	CourseOfferings   string `json:"courseOfferings"`   // course_offering ids that must have an offering

	// Fields shared by every offering of this workout.
	PolicyID   *uint `json:"policyId"`
	TimeLimit  *int  `json:"timeLimit"`
	Published  bool  `json:"published"`
	MostRecent bool  `json:"mostRecent"`
}

type exerciseEntry struct {
	ID     uint    `json:"id"`
	Points float64 `json:"points"`
}

// changeSets is the fully parsed, validated form of a ReconcileRequest.
// Parsing happens before any mutation so a malformed payload can never
// leave a half-applied change behind.
type changeSets struct {
	removedLinks      []uint
	exercises         []exerciseEntry
	removedExtensions []uint
	removedOfferings  []uint
	courseOfferings   []uint
}

func parseIDSet(field, raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidPayload, field)
	}
	return ids, nil
}

func parseChangeSets(req ReconcileRequest) (*changeSets, error) {
	sets := &changeSets{}
	var err error

	if sets.removedLinks, err = parseIDSet("removedExercises", req.RemovedExercises); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Exercises) != "" {
		if err := json.Unmarshal([]byte(req.Exercises), &sets.exercises); err != nil {
			return nil, fmt.Errorf("%w: exercises", util.ErrInvalidPayload)
		}
	}
	for _, e := range sets.exercises {
		if e.Points < 0 {
			return nil, fmt.Errorf("%w: exercise %d has negative points", util.ErrInvalidPayload, e.ID)
		}
	}
	if sets.removedExtensions, err = parseIDSet("removedExtensions", req.RemovedExtensions); err != nil {
		return nil, err
	}
	if sets.removedOfferings, err = parseIDSet("removedOfferings", req.RemovedOfferings); err != nil {
		return nil, err
	}
	if sets.courseOfferings, err = parseIDSet("courseOfferings", req.CourseOfferings); err != nil {
		return nil, err
	}
	return sets, nil
}

// Reconcile applies the desired state to an existing workout and returns
// the id of the first offering created or updated, if any. Re-submitting
// the same request is a no-op on the persisted state.
func (s *ReconcileService) Reconcile(workoutID uint, req ReconcileRequest) (*uint, error) {
	sets, err := parseChangeSets(req)
	if err != nil {
		return nil, err
	}

	var firstOfferingID *uint
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var workout model.Workout
		if err := tx.First(&workout, workoutID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrWorkoutNotFound
			}
			return err
		}

		workout.Name = req.Name
		workout.Description = req.Description
		workout.IsPublic = req.IsPublic
		if err := tx.Save(&workout).Error; err != nil {
			return err
		}

		firstOfferingID, err = s.apply(tx, &workout, sets, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return firstOfferingID, nil
}

// CreateWorkout creates a new workout and applies the desired state to it
// in the same transaction.
func (s *ReconcileService) CreateWorkout(creatorID uint, req ReconcileRequest) (*model.Workout, *uint, error) {
	sets, err := parseChangeSets(req)
	if err != nil {
		return nil, nil, err
	}

	workout := &model.Workout{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatorID:   creatorID,
	}

	var firstOfferingID *uint
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workout).Error; err != nil {
			return err
		}
		firstOfferingID, err = s.apply(tx, workout, sets, req)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return workout, firstOfferingID, nil
}

// apply runs the reconciliation steps in order: drop named exercise links,
// rebuild link order from the submitted sequence, drop named extensions,
// drop named offerings (extensions cascade), then ensure an offering exists
// for every requested course offering.
func (s *ReconcileService) apply(tx *gorm.DB, workout *model.Workout, sets *changeSets, req ReconcileRequest) (*uint, error) {
	if len(sets.removedLinks) > 0 {
		// Missing ids are a no-op, which keeps removal idempotent. Owned
		// join rows are removed for good: a soft-deleted row would still
		// hold the (workout, exercise) unique slot and block a re-add.
		if err := tx.Unscoped().Where("workout_id = ? AND id IN ?", workout.ID, sets.removedLinks).
			Delete(&model.ExerciseWorkout{}).Error; err != nil {
			return nil, err
		}
	}

	for i, entry := range sets.exercises {
		var exercise model.Exercise
		if err := tx.First(&exercise, entry.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: id %d", util.ErrExerciseNotFound, entry.ID)
			}
			return nil, err
		}

		var link model.ExerciseWorkout
		err := tx.Where("workout_id = ? AND exercise_id = ?", workout.ID, exercise.ID).
			First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			link = model.ExerciseWorkout{WorkoutID: workout.ID, ExerciseID: exercise.ID}
		} else if err != nil {
			return nil, err
		}

		// Position in the submitted sequence is the order, so the final
		// order values are always a contiguous 1..N run.
		link.Order = i + 1
		link.Points = entry.Points
		if err := tx.Save(&link).Error; err != nil {
			return nil, err
		}
	}

	offeringIDs, err := s.offeringIDs(tx, workout.ID)
	if err != nil {
		return nil, err
	}

	if len(sets.removedExtensions) > 0 && len(offeringIDs) > 0 {
		if err := tx.Unscoped().Where("id IN ? AND workout_offering_id IN ?", sets.removedExtensions, offeringIDs).
			Delete(&model.StudentExtension{}).Error; err != nil {
			return nil, err
		}
	}

	if len(sets.removedOfferings) > 0 {
		var doomed []uint
		if err := tx.Model(&model.WorkoutOffering{}).
			Where("workout_id = ? AND id IN ?", workout.ID, sets.removedOfferings).
			Pluck("id", &doomed).Error; err != nil {
			return nil, err
		}
		if len(doomed) > 0 {
			if err := tx.Unscoped().Where("workout_offering_id IN ?", doomed).
				Delete(&model.StudentExtension{}).Error; err != nil {
				return nil, err
			}
			if err := tx.Unscoped().Where("id IN ?", doomed).
				Delete(&model.WorkoutOffering{}).Error; err != nil {
				return nil, err
			}
		}
	}

	if req.PolicyID != nil {
		var policy model.WorkoutPolicy
		if err := tx.First(&policy, *req.PolicyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: id %d", util.ErrPolicyNotFound, *req.PolicyID)
			}
			return nil, err
		}
	}

	var firstOfferingID *uint
	for _, courseOfferingID := range sets.courseOfferings {
		var courseOffering model.CourseOffering
		if err := tx.First(&courseOffering, courseOfferingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: course offering %d", util.ErrCourseNotFound, courseOfferingID)
			}
			return nil, err
		}

		var offering model.WorkoutOffering
		err := tx.Where("workout_id = ? AND course_offering_id = ?", workout.ID, courseOfferingID).
			First(&offering).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			offering = model.WorkoutOffering{
				WorkoutID:        workout.ID,
				CourseOfferingID: courseOfferingID,
			}
		} else if err != nil {
			return nil, err
		}

		offering.WorkoutPolicyID = req.PolicyID
		offering.TimeLimit = req.TimeLimit
		offering.Published = req.Published
		offering.MostRecent = req.MostRecent
		if err := tx.Save(&offering).Error; err != nil {
			return nil, err
		}
		if firstOfferingID == nil {
			id := offering.ID
			firstOfferingID = &id
		}
	}

	return firstOfferingID, nil
}

func (s *ReconcileService) offeringIDs(tx *gorm.DB, workoutID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&model.WorkoutOffering{}).
		Where("workout_id = ?", workoutID).
		Pluck("id", &ids).Error
	return ids, err
}

// ExtensionRequest carries per-student overrides for one offering.
type ExtensionRequest struct {
	UserID       uint       `json:"userId"`
	OpeningDate  *time.Time `json:"openingDate,omitempty"`
	SoftDeadline *time.Time `json:"softDeadline,omitempty"`
	HardDeadline *time.Time `json:"hardDeadline,omitempty"`
	TimeLimit    *int       `json:"timeLimit,omitempty"`
}

// GrantExtension creates a student extension for an offering. A second
// extension for the same (offering, user) pair is a conflict.
func (s *ReconcileService) GrantExtension(offeringID uint, req ExtensionRequest) (*model.StudentExtension, error) {
	ext := &model.StudentExtension{
		WorkoutOfferingID: offeringID,
		UserID:            req.UserID,
		OpeningDate:       req.OpeningDate,
		SoftDeadline:      req.SoftDeadline,
		HardDeadline:      req.HardDeadline,
		TimeLimit:         req.TimeLimit,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var offering model.WorkoutOffering
		if err := tx.First(&offering, offeringID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrOfferingNotFound
			}
			return err
		}
		var user model.User
		if err := tx.First(&user, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.StudentExtension{}).
			Where("workout_offering_id = ? AND user_id = ?", offeringID, req.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return util.ErrDuplicateExtension
		}

		return tx.Create(ext).Error
	})
	if err != nil {
		return nil, err
	}
	return ext, nil
}

// DeleteWorkout removes a workout and everything it owns: exercise links,
// offerings and their extensions, and score rows.
func (s *ReconcileService) DeleteWorkout(workoutID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var workout model.Workout
		if err := tx.First(&workout, workoutID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrWorkoutNotFound
			}
			return err
		}

		offeringIDs, err := s.offeringIDs(tx, workoutID)
		if err != nil {
			return err
		}
		if len(offeringIDs) > 0 {
			if err := tx.Unscoped().Where("workout_offering_id IN ?", offeringIDs).
				Delete(&model.StudentExtension{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", offeringIDs).
				Delete(&model.WorkoutOffering{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("workout_id = ?", workoutID).
			Delete(&model.ExerciseWorkout{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("workout_id = ?", workoutID).
			Delete(&model.WorkoutScore{}).Error; err != nil {
			return err
		}
		return tx.Delete(&workout).Error
	})
}
