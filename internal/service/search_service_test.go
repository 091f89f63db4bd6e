package service

import (
	"testing"
	"time"

	"workout_gym_backend/internal/model"
	"workout_gym_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSearchService(db *gorm.DB) *SearchService {
	capability := NewDBCapability(repository.NewUserRepository(db))
	return NewSearchService(repository.NewWorkoutRepository(db), capability, db)
}

func TestTokenizeTerms(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"sorting", []string{"sorting"}},
		{"sorting searching", []string{"sorting", "searching"}},
		{"sorting, binary search", []string{"sorting", "binary search"}},
		{"loops,, arrays ,", []string{"loops", "arrays"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TokenizeTerms(tc.raw), "input %q", tc.raw)
	}
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	db := newTestDB(t)
	svc := newSearchService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	sorting := seedWorkout(t, db, teacher.ID, "Sorting Basics", true)
	require.NoError(t, db.Create(&model.Workout{
		Name:        "Misc Drills",
		Description: "covers sorting and recursion",
		IsPublic:    true,
		CreatorID:   teacher.ID,
	}).Error)
	seedWorkout(t, db, teacher.ID, "Graph Theory", true)

	results, err := svc.Search("SORTING", 0, nil, false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := []uint{results[0].ID, results[1].ID}
	assert.Contains(t, ids, sorting.ID)
}

func TestSearchBlankMatchesEverythingVisible(t *testing.T) {
	db := newTestDB(t)
	svc := newSearchService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	seedWorkout(t, db, teacher.ID, "Sorting Basics", true)
	seedWorkout(t, db, teacher.ID, "Graph Theory", true)

	results, err := svc.Search("", 0, nil, false)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchHidesForeignPrivateWorkouts(t *testing.T) {
	db := newTestDB(t)
	svc := newSearchService(db)
	alice := seedUser(t, db, "alice", model.Teacher)
	bob := seedUser(t, db, "bob", model.Teacher)
	mine := seedWorkout(t, db, alice.ID, "Sorting Mine", false)
	seedWorkout(t, db, bob.ID, "Sorting Theirs", false)
	public := seedWorkout(t, db, bob.ID, "Sorting Public", true)

	results, err := svc.Search("sorting", alice.ID, nil, false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := []uint{results[0].ID, results[1].ID}
	assert.Contains(t, ids, mine.ID)
	assert.Contains(t, ids, public.ID)

	// A guest sees only the public one.
	results, err = svc.Search("sorting", 0, nil, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, public.ID, results[0].ID)
}

func TestSearchAdminSeesEverything(t *testing.T) {
	db := newTestDB(t)
	svc := newSearchService(db)
	alice := seedUser(t, db, "alice", model.Teacher)
	admin := seedUser(t, db, "root", model.Admin)
	seedWorkout(t, db, alice.ID, "Sorting Private", false)

	results, err := svc.Search("sorting", admin.ID, nil, false)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchCourseScope(t *testing.T) {
	db := newTestDB(t)
	svc := newSearchService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	inCourse := seedWorkout(t, db, teacher.ID, "Sorting In Course", true)
	unpublished := seedWorkout(t, db, teacher.ID, "Sorting Draft", true)
	seedWorkout(t, db, teacher.ID, "Sorting Elsewhere", true)

	co := seedCourseOffering(t, db, time.Now().AddDate(0, 2, 0))
	seedWorkoutOffering(t, db, inCourse.ID, co.ID)
	draft := &model.WorkoutOffering{WorkoutID: unpublished.ID, CourseOfferingID: co.ID, Published: false}
	require.NoError(t, db.Create(draft).Error)

	var course model.CourseOffering
	require.NoError(t, db.First(&course, co.ID).Error)

	// Unscoped course search sees drafts too.
	results, err := svc.Search("sorting", 0, &course.CourseID, false)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Scoped to offerings only published deployments remain.
	results, err = svc.Search("sorting", 0, &course.CourseID, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, inCourse.ID, results[0].ID)
}

func TestSearchRanksByTermMatches(t *testing.T) {
	db := newTestDB(t)
	svc := newSearchService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	both := seedWorkout(t, db, teacher.ID, "Sorting and Searching", true)
	one := seedWorkout(t, db, teacher.ID, "Sorting Only", true)

	results, err := svc.Search("sorting, searching", 0, nil, false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, both.ID, results[0].ID)
	assert.Equal(t, one.ID, results[1].ID)
}

func TestGymListsRecentPublic(t *testing.T) {
	db := newTestDB(t)
	svc := newSearchService(db)
	teacher := seedUser(t, db, "alice", model.Teacher)
	seedWorkout(t, db, teacher.ID, "Public One", true)
	seedWorkout(t, db, teacher.ID, "Private", false)
	seedWorkout(t, db, teacher.ID, "Public Two", true)

	results, err := svc.Gym(10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, w := range results {
		assert.True(t, w.IsPublic)
	}
}
