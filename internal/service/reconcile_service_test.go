package service

import (
	"fmt"
	"testing"
	"time"

	"workout_gym_backend/internal/model"
	"workout_gym_backend/internal/repository"
	"workout_gym_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReconcileService(db *gorm.DB) *ReconcileService {
	return NewReconcileService(repository.NewWorkoutRepository(db), db)
}

func exercisesJSON(entries ...model.Exercise) string {
	out := "["
	for i, e := range entries {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"id":%d,"points":10}`, e.ID)
	}
	return out + "]"
}

func orderedLinks(t *testing.T, db *gorm.DB, workoutID uint) []model.ExerciseWorkout {
	t.Helper()
	var links []model.ExerciseWorkout
	require.NoError(t, db.Where("workout_id = ?", workoutID).Order("list_order asc").Find(&links).Error)
	return links
}

func TestCreateWorkoutOrdersExercises(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	a := seedExercise(t, db, "loops")
	b := seedExercise(t, db, "arrays")
	c := seedExercise(t, db, "strings")

	workout, offeringID, err := svc.CreateWorkout(teacher.ID, ReconcileRequest{
		Name:      "Warmup",
		IsPublic:  true,
		Exercises: exercisesJSON(*b, *c, *a),
	})
	require.NoError(t, err)
	assert.Nil(t, offeringID)
	assert.Equal(t, teacher.ID, workout.CreatorID)

	links := orderedLinks(t, db, workout.ID)
	require.Len(t, links, 3)
	assert.Equal(t, []uint{b.ID, c.ID, a.ID}, []uint{links[0].ExerciseID, links[1].ExerciseID, links[2].ExerciseID})
	for i, link := range links {
		assert.Equal(t, i+1, link.Order)
	}
}

func TestReconcileReordersAndStaysContiguous(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	a := seedExercise(t, db, "loops")
	b := seedExercise(t, db, "arrays")
	c := seedExercise(t, db, "strings")
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	seedLink(t, db, workout.ID, a.ID, 1, 10)
	seedLink(t, db, workout.ID, b.ID, 2, 10)
	doomed := seedLink(t, db, workout.ID, c.ID, 3, 10)

	req := ReconcileRequest{
		Name:             "Warmup",
		IsPublic:         true,
		RemovedExercises: fmt.Sprintf("[%d]", doomed.ID),
		Exercises:        exercisesJSON(*b, *a),
	}
	_, err := svc.Reconcile(workout.ID, req)
	require.NoError(t, err)

	links := orderedLinks(t, db, workout.ID)
	require.Len(t, links, 2)
	assert.Equal(t, b.ID, links[0].ExerciseID)
	assert.Equal(t, 1, links[0].Order)
	assert.Equal(t, a.ID, links[1].ExerciseID)
	assert.Equal(t, 2, links[1].Order)

	// Re-submitting the same desired state changes nothing.
	_, err = svc.Reconcile(workout.ID, req)
	require.NoError(t, err)
	again := orderedLinks(t, db, workout.ID)
	require.Len(t, again, 2)
	assert.Equal(t, links[0].ID, again[0].ID)
	assert.Equal(t, links[1].ID, again[1].ID)
}

func TestReconcileRemovingMissingLinkIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	a := seedExercise(t, db, "loops")
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	seedLink(t, db, workout.ID, a.ID, 1, 10)

	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:             "Warmup",
		IsPublic:         true,
		RemovedExercises: "[9999]",
		Exercises:        exercisesJSON(*a),
	})
	require.NoError(t, err)
	assert.Len(t, orderedLinks(t, db, workout.ID), 1)
}

func TestReconcileUnknownExerciseRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	a := seedExercise(t, db, "loops")
	b := seedExercise(t, db, "arrays")
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	seedLink(t, db, workout.ID, a.ID, 1, 10)
	seedLink(t, db, workout.ID, b.ID, 2, 10)

	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:      "Renamed",
		IsPublic:  true,
		Exercises: fmt.Sprintf(`[{"id":%d,"points":10},{"id":9999,"points":10}]`, b.ID),
	})
	require.ErrorIs(t, err, util.ErrExerciseNotFound)

	// The whole transaction rolled back: order and name are untouched.
	links := orderedLinks(t, db, workout.ID)
	require.Len(t, links, 2)
	assert.Equal(t, a.ID, links[0].ExerciseID)
	assert.Equal(t, b.ID, links[1].ExerciseID)

	var reloaded model.Workout
	require.NoError(t, db.First(&reloaded, workout.ID).Error)
	assert.Equal(t, "Warmup", reloaded.Name)
}

func TestReconcileMalformedChangeSet(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)

	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:      "Warmup",
		Exercises: "{not json",
	})
	require.ErrorIs(t, err, util.ErrInvalidPayload)

	_, err = svc.Reconcile(workout.ID, ReconcileRequest{
		Name:             "Warmup",
		RemovedOfferings: `["x"]`,
	})
	require.ErrorIs(t, err, util.ErrInvalidPayload)
}

func TestReconcileNegativePointsRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	a := seedExercise(t, db, "loops")
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)

	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:      "Warmup",
		Exercises: fmt.Sprintf(`[{"id":%d,"points":-5}]`, a.ID),
	})
	require.ErrorIs(t, err, util.ErrInvalidPayload)
	assert.Empty(t, orderedLinks(t, db, workout.ID))
}

func TestReconcileCreatesAndUpdatesOfferings(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))

	policy := &model.WorkoutPolicy{Name: "strict", NoReviewBeforeClose: true}
	require.NoError(t, db.Create(policy).Error)

	firstID, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:            "Warmup",
		IsPublic:        true,
		CourseOfferings: fmt.Sprintf("[%d]", co.ID),
		PolicyID:        &policy.ID,
		TimeLimit:       intPtr(45),
		Published:       true,
	})
	require.NoError(t, err)
	require.NotNil(t, firstID)

	var offering model.WorkoutOffering
	require.NoError(t, db.First(&offering, *firstID).Error)
	assert.Equal(t, workout.ID, offering.WorkoutID)
	assert.Equal(t, co.ID, offering.CourseOfferingID)
	assert.Equal(t, policy.ID, *offering.WorkoutPolicyID)
	assert.Equal(t, 45, *offering.TimeLimit)
	assert.True(t, offering.Published)

	// A second pass updates the same row instead of duplicating it.
	secondID, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:            "Warmup",
		IsPublic:        true,
		CourseOfferings: fmt.Sprintf("[%d]", co.ID),
		TimeLimit:       intPtr(60),
	})
	require.NoError(t, err)
	require.NotNil(t, secondID)
	assert.Equal(t, *firstID, *secondID)

	var count int64
	require.NoError(t, db.Model(&model.WorkoutOffering{}).Where("workout_id = ?", workout.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, db.First(&offering, *firstID).Error)
	assert.Equal(t, 60, *offering.TimeLimit)
	assert.Nil(t, offering.WorkoutPolicyID)
}

func TestReconcileUnknownPolicyRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))

	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:            "Warmup",
		CourseOfferings: fmt.Sprintf("[%d]", co.ID),
		PolicyID:        uintPtr(9999),
	})
	require.ErrorIs(t, err, util.ErrPolicyNotFound)
}

func TestReconcileRemovedOfferingCascadesExtensions(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	student := seedUser(t, db, "bob", model.Student)
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))
	offering := seedWorkoutOffering(t, db, workout.ID, co.ID)

	ext := &model.StudentExtension{WorkoutOfferingID: offering.ID, UserID: student.ID, TimeLimit: intPtr(90)}
	require.NoError(t, db.Create(ext).Error)

	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:             "Warmup",
		IsPublic:         true,
		RemovedOfferings: fmt.Sprintf("[%d]", offering.ID),
	})
	require.NoError(t, err)

	var offerings, extensions int64
	require.NoError(t, db.Model(&model.WorkoutOffering{}).Where("workout_id = ?", workout.ID).Count(&offerings).Error)
	require.NoError(t, db.Model(&model.StudentExtension{}).Where("workout_offering_id = ?", offering.ID).Count(&extensions).Error)
	assert.Zero(t, offerings)
	assert.Zero(t, extensions)
}

func TestReconcileIgnoresForeignOfferings(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	mine := seedWorkout(t, db, teacher.ID, "Mine", true)
	other := seedWorkout(t, db, teacher.ID, "Other", true)
	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))
	foreign := seedWorkoutOffering(t, db, other.ID, co.ID)

	_, err := svc.Reconcile(mine.ID, ReconcileRequest{
		Name:             "Mine",
		IsPublic:         true,
		RemovedOfferings: fmt.Sprintf("[%d]", foreign.ID),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.WorkoutOffering{}).Where("id = ?", foreign.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReconcileReAddsRemovedExerciseInOneCall(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	a := seedExercise(t, db, "loops")
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	doomed := seedLink(t, db, workout.ID, a.ID, 1, 10)

	// Dropping a link and re-adding its exercise in the same request must
	// land cleanly; the removed row may not keep the unique pair occupied.
	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:             "Warmup",
		IsPublic:         true,
		RemovedExercises: fmt.Sprintf("[%d]", doomed.ID),
		Exercises:        exercisesJSON(*a),
	})
	require.NoError(t, err)

	links := orderedLinks(t, db, workout.ID)
	require.Len(t, links, 1)
	assert.Equal(t, a.ID, links[0].ExerciseID)
	assert.Equal(t, 1, links[0].Order)

	var total int64
	require.NoError(t, db.Unscoped().Model(&model.ExerciseWorkout{}).
		Where("workout_id = ?", workout.ID).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestReconcileReAddsRemovedExerciseAcrossCalls(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	a := seedExercise(t, db, "loops")
	b := seedExercise(t, db, "arrays")
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	doomed := seedLink(t, db, workout.ID, a.ID, 1, 10)
	seedLink(t, db, workout.ID, b.ID, 2, 10)

	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:             "Warmup",
		IsPublic:         true,
		RemovedExercises: fmt.Sprintf("[%d]", doomed.ID),
		Exercises:        exercisesJSON(*b),
	})
	require.NoError(t, err)
	require.Len(t, orderedLinks(t, db, workout.ID), 1)

	_, err = svc.Reconcile(workout.ID, ReconcileRequest{
		Name:      "Warmup",
		IsPublic:  true,
		Exercises: exercisesJSON(*b, *a),
	})
	require.NoError(t, err)

	links := orderedLinks(t, db, workout.ID)
	require.Len(t, links, 2)
	assert.Equal(t, b.ID, links[0].ExerciseID)
	assert.Equal(t, a.ID, links[1].ExerciseID)
	assert.Equal(t, 2, links[1].Order)
}

func TestGrantExtensionAfterReconciledRemoval(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	student := seedUser(t, db, "bob", model.Student)
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))
	offering := seedWorkoutOffering(t, db, workout.ID, co.ID)

	ext, err := svc.GrantExtension(offering.ID, ExtensionRequest{UserID: student.ID, TimeLimit: intPtr(60)})
	require.NoError(t, err)

	_, err = svc.Reconcile(workout.ID, ReconcileRequest{
		Name:              "Warmup",
		IsPublic:          true,
		RemovedExtensions: fmt.Sprintf("[%d]", ext.ID),
	})
	require.NoError(t, err)

	// The pair is free again: a fresh grant succeeds rather than hitting
	// the unique index through a leftover removed row.
	regranted, err := svc.GrantExtension(offering.ID, ExtensionRequest{UserID: student.ID, TimeLimit: intPtr(90)})
	require.NoError(t, err)
	assert.Equal(t, 90, *regranted.TimeLimit)

	var count int64
	require.NoError(t, db.Unscoped().Model(&model.StudentExtension{}).
		Where("workout_offering_id = ? AND user_id = ?", offering.ID, student.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReconcileRecreatesRemovedOffering(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))
	offering := seedWorkoutOffering(t, db, workout.ID, co.ID)

	_, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:             "Warmup",
		IsPublic:         true,
		RemovedOfferings: fmt.Sprintf("[%d]", offering.ID),
	})
	require.NoError(t, err)

	recreatedID, err := svc.Reconcile(workout.ID, ReconcileRequest{
		Name:            "Warmup",
		IsPublic:        true,
		CourseOfferings: fmt.Sprintf("[%d]", co.ID),
		Published:       true,
	})
	require.NoError(t, err)
	require.NotNil(t, recreatedID)

	var recreated model.WorkoutOffering
	require.NoError(t, db.First(&recreated, *recreatedID).Error)
	assert.True(t, recreated.Published)

	var count int64
	require.NoError(t, db.Model(&model.WorkoutOffering{}).Where("workout_id = ?", workout.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGrantExtension(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	student := seedUser(t, db, "bob", model.Student)
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))
	offering := seedWorkoutOffering(t, db, workout.ID, co.ID)

	deadline := time.Now().AddDate(0, 0, 10)
	ext, err := svc.GrantExtension(offering.ID, ExtensionRequest{
		UserID:       student.ID,
		HardDeadline: timePtr(deadline),
	})
	require.NoError(t, err)
	assert.Equal(t, student.ID, ext.UserID)
	require.NotNil(t, ext.HardDeadline)

	_, err = svc.GrantExtension(offering.ID, ExtensionRequest{UserID: student.ID})
	require.ErrorIs(t, err, util.ErrDuplicateExtension)

	_, err = svc.GrantExtension(9999, ExtensionRequest{UserID: student.ID})
	require.ErrorIs(t, err, util.ErrOfferingNotFound)

	_, err = svc.GrantExtension(offering.ID, ExtensionRequest{UserID: 9999})
	require.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestDeleteWorkoutCascades(t *testing.T) {
	db := newTestDB(t)
	svc := newReconcileService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	student := seedUser(t, db, "bob", model.Student)
	a := seedExercise(t, db, "loops")
	workout := seedWorkout(t, db, teacher.ID, "Warmup", true)
	seedLink(t, db, workout.ID, a.ID, 1, 10)
	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))
	offering := seedWorkoutOffering(t, db, workout.ID, co.ID)
	require.NoError(t, db.Create(&model.StudentExtension{WorkoutOfferingID: offering.ID, UserID: student.ID}).Error)
	require.NoError(t, db.Create(&model.WorkoutScore{UserID: student.ID, WorkoutID: workout.ID}).Error)

	require.NoError(t, svc.DeleteWorkout(workout.ID))

	for _, query := range []*gorm.DB{
		db.Model(&model.Workout{}).Where("id = ?", workout.ID),
		db.Model(&model.ExerciseWorkout{}).Where("workout_id = ?", workout.ID),
		db.Model(&model.WorkoutOffering{}).Where("workout_id = ?", workout.ID),
		db.Model(&model.StudentExtension{}).Where("workout_offering_id = ?", offering.ID),
		db.Model(&model.WorkoutScore{}).Where("workout_id = ?", workout.ID),
	} {
		var count int64
		require.NoError(t, query.Count(&count).Error)
		assert.Zero(t, count)
	}

	require.ErrorIs(t, svc.DeleteWorkout(workout.ID), util.ErrWorkoutNotFound)
}
