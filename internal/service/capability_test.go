package service

import (
	"testing"
	"time"

	"workout_gym_backend/internal/model"
	"workout_gym_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBCapability(t *testing.T) {
	db := newTestDB(t)
	capability := NewDBCapability(repository.NewUserRepository(db))

	creator := seedUser(t, db, "alice", model.Teacher)
	admin := seedUser(t, db, "root", model.Admin)
	staff := seedUser(t, db, "carol", model.Teacher)
	student := seedUser(t, db, "bob", model.Student)
	workout := seedWorkout(t, db, creator.ID, "Drills", false)

	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))
	seedWorkoutOffering(t, db, workout.ID, co.ID)
	require.NoError(t, db.Create(&model.CourseEnrollment{
		UserID:           staff.ID,
		CourseOfferingID: co.ID,
		Role:             model.RoleStaff,
	}).Error)
	require.NoError(t, db.Create(&model.CourseEnrollment{
		UserID:           student.ID,
		CourseOfferingID: co.ID,
		Role:             model.RoleStudent,
	}).Error)

	assert.True(t, capability.Check(creator.ID, "edit", workout))
	assert.True(t, capability.Check(admin.ID, "edit", workout))
	assert.True(t, capability.Check(staff.ID, "edit", workout))
	assert.False(t, capability.Check(student.ID, "edit", workout))
	assert.False(t, capability.Check(0, "read", workout))
	assert.False(t, capability.Check(creator.ID, "read", nil))
}
