package app

import (
	"workout_gym_backend/internal/config"
	"workout_gym_backend/internal/middleware"
	"workout_gym_backend/internal/model"
	"workout_gym_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// The gym and search show public workouts to guests; a token
		// widens the result set to what the caller manages.
		public.GET("/gym", middleware.TryAuthMiddleware(cfg), c.workout.Gym)
		public.POST("/gym/search", middleware.TryAuthMiddleware(cfg), c.workout.Search)
		public.GET("/workouts/:id", middleware.TryAuthMiddleware(cfg), c.workout.GetWorkout)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.POST("/workouts/:id/practice", c.practice.Practice)
		authGroup.POST("/practice/advance", c.practice.Advance)
		authGroup.POST("/practice/evaluate", c.practice.Evaluate)

		staff := authGroup.Group("/")
		staff.Use(middleware.RoleMiddleware(model.Teacher))
		{
			staff.POST("/workouts", c.workout.CreateWorkout)
			staff.PUT("/workouts/:id", c.workout.UpdateWorkout)
			staff.DELETE("/workouts/:id", c.workout.DeleteWorkout)
			staff.POST("/workout-offerings/:id/extensions", c.workout.GrantExtension)
		}
	}
}
