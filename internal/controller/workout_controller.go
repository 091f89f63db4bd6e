package controller

import (
	"errors"
	"fmt"
	"strconv"

	"workout_gym_backend/internal/service"
	"workout_gym_backend/internal/util"
	"workout_gym_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type WorkoutController struct {
	ReconcileService *service.ReconcileService
	SearchService    *service.SearchService
	Capability       service.Capability
}

func NewWorkoutController(reconcileService *service.ReconcileService, searchService *service.SearchService, capability service.Capability) *WorkoutController {
	return &WorkoutController{
		ReconcileService: reconcileService,
		SearchService:    searchService,
		Capability:       capability,
	}
}

func (c *WorkoutController) CreateWorkout(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ReconcileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	workout, offeringID, err := c.ReconcileService.CreateWorkout(user.UserID, req)
	if err != nil {
		c.reconcileError(ctx, err)
		return
	}

	monitoring.ReconcilesTotal.WithLabelValues("applied").Inc()
	util.Created(ctx, gin.H{
		"workoutId":         workout.ID,
		"workoutOfferingId": offeringID,
		"url":               redirectURL(workout.ID, offeringID),
	})
}

func (c *WorkoutController) UpdateWorkout(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	workoutID, err := paramID(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	workout, err := c.ReconcileService.WorkoutRepo.FindByID(workoutID)
	if err != nil {
		util.NotFound(ctx, util.ErrWorkoutNotFound.Error())
		return
	}
	if !c.Capability.Check(user.UserID, "edit", workout) {
		util.Forbidden(ctx)
		return
	}

	var req service.ReconcileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	offeringID, err := c.ReconcileService.Reconcile(workoutID, req)
	if err != nil {
		monitoring.ReconcilesTotal.WithLabelValues("rejected").Inc()
		c.reconcileError(ctx, err)
		return
	}

	monitoring.ReconcilesTotal.WithLabelValues("applied").Inc()
	util.Success(ctx, gin.H{
		"workoutOfferingId": offeringID,
		"url":               redirectURL(workoutID, offeringID),
	})
}

func (c *WorkoutController) GetWorkout(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	workoutID, err := paramID(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	workout, err := c.ReconcileService.WorkoutRepo.FindWithExercises(workoutID)
	if err != nil {
		util.NotFound(ctx, util.ErrWorkoutNotFound.Error())
		return
	}

	if !workout.IsPublic {
		userID := uint(0)
		if user != nil {
			userID = user.UserID
		}
		if !c.Capability.Check(userID, "read", workout) {
			util.Redirect(ctx, "/gym",
				"You do not have permission to access that non-public workout. Have a look at these popular workouts instead.")
			return
		}
	}

	util.Success(ctx, workout)
}

func (c *WorkoutController) DeleteWorkout(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	workoutID, err := paramID(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	workout, err := c.ReconcileService.WorkoutRepo.FindByID(workoutID)
	if err != nil {
		util.NotFound(ctx, util.ErrWorkoutNotFound.Error())
		return
	}
	if !c.Capability.Check(user.UserID, "destroy", workout) {
		util.Forbidden(ctx)
		return
	}

	if err := c.ReconcileService.DeleteWorkout(workoutID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": workoutID})
}

func (c *WorkoutController) Gym(ctx *gin.Context) {
	workouts, err := c.SearchService.Gym(12)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, workouts)
}

type SearchRequest struct {
	Search    string `json:"search"`
	CourseID  *uint  `json:"courseId"`
	Offerings bool   `json:"offerings"`
}

func (c *WorkoutController) Search(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	userID := uint(0)
	if user != nil {
		userID = user.UserID
	}

	var req SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	workouts, err := c.SearchService.Search(req.Search, userID, req.CourseID, req.Offerings)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	message := ""
	if len(workouts) == 0 {
		// Surface something useful instead of an empty page: retry with
		// no filter, and only then admit the gym is empty.
		message = "Your search did not match any workouts. Try these instead..."
		workouts, err = c.SearchService.Search("", userID, req.CourseID, req.Offerings)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		if len(workouts) == 0 {
			message = "No public workouts exist yet. Please wait for contributors to add more."
		}
	}

	util.Success(ctx, gin.H{"workouts": workouts, "message": message})
}

func (c *WorkoutController) GrantExtension(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	offeringID, err := paramID(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.ExtensionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ext, err := c.ReconcileService.GrantExtension(offeringID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrOfferingNotFound), errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrDuplicateExtension):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, ext)
}

func (c *WorkoutController) reconcileError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidPayload):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrWorkoutNotFound),
		errors.Is(err, util.ErrExerciseNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrPolicyNotFound):
		util.NotFound(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func paramID(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	return uint(id), err
}

func redirectURL(workoutID uint, offeringID *uint) string {
	if offeringID == nil {
		return fmt.Sprintf("/workouts/%d", workoutID)
	}
	return fmt.Sprintf("/workout-offerings/%d", *offeringID)
}
