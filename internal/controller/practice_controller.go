package controller

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"workout_gym_backend/internal/service"
	"workout_gym_backend/internal/util"
	"workout_gym_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type PracticeController struct {
	PracticeService *service.PracticeService
}

func NewPracticeController(practiceService *service.PracticeService) *PracticeController {
	return &PracticeController{PracticeService: practiceService}
}

// Practice opens a session on a workout and replies with the first
// exercise to present. A policy denial is a normal reply carrying the
// reason, not an error status.
func (c *PracticeController) Practice(ctx *gin.Context) {
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

	var offeringID *uint
	if raw := ctx.Query("offering_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "invalid offering_id")
			return
		}
		parsed := uint(id)
		offeringID = &parsed
	}

	result, err := c.PracticeService.Start(ctx.Request.Context(), user.UserID, workoutID, offeringID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, util.ErrWorkoutNotFound), errors.Is(err, util.ErrOfferingNotFound):
			util.NotFound(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if result.Denied != "" {
		util.Redirect(ctx, fmt.Sprintf("/workouts/%d", workoutID), denialNotice(result.Denied))
		return
	}

	monitoring.PracticeSessionsStarted.Inc()
	util.Success(ctx, result)
}

type AdvanceRequest struct {
	ExerciseID uint    `json:"exerciseId"`
	Points     float64 `json:"points"`
	Correct    bool    `json:"correct"`
	Comment    string  `json:"comment"`
}

// Advance records the prior exercise's outcome, when one is posted, and
// replies with the next exercise or a completion signal.
func (c *PracticeController) Advance(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var prior *service.ExerciseFeedback
	if ctx.Request.ContentLength > 0 {
		var req AdvanceRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		if req.ExerciseID != 0 {
			prior = &service.ExerciseFeedback{
				ExerciseID: req.ExerciseID,
				Points:     req.Points,
				Correct:    req.Correct,
				Comment:    req.Comment,
			}
		}
	}

	result, err := c.PracticeService.Advance(ctx.Request.Context(), user.UserID, prior, time.Now())
	if err != nil {
		c.sessionError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// Evaluate finalizes the session: the accumulated score and per-exercise
// feedback come back, and the session is gone afterwards.
func (c *PracticeController) Evaluate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.PracticeService.Close(ctx.Request.Context(), user.UserID, time.Now())
	if err != nil {
		c.sessionError(ctx, err)
		return
	}

	monitoring.PracticeSessionsClosed.Inc()
	util.Success(ctx, result)
}

func (c *PracticeController) sessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNoActiveSession):
		// A stale tab, not a defect: send the user home.
		util.Redirect(ctx, "/", "Invalid action")
	case errors.Is(err, util.ErrExerciseNotFound):
		util.NotFound(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func denialNotice(reason service.DenialReason) string {
	switch reason {
	case service.ReasonNotYetOpen:
		return "This workout is not open for practice yet."
	case service.ReasonPastDeadline:
		return "The deadline for this workout has passed."
	case service.ReasonReviewLockedUntilClose:
		return "The time limit has passed for this workout."
	default:
		return "Practice is not available right now."
	}
}
