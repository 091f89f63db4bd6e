package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workout_gym_backend/internal/config"
	"workout_gym_backend/internal/controller"
	"workout_gym_backend/internal/repository"
	"workout_gym_backend/internal/service"
	"workout_gym_backend/pkg/database"
	"workout_gym_backend/pkg/logger"
	"workout_gym_backend/pkg/monitoring"
	"workout_gym_backend/pkg/security"
	"workout_gym_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user      *repository.UserRepository
	workout   *repository.WorkoutRepository
	offering  *repository.WorkoutOfferingRepository
	extension *repository.StudentExtensionRepository
	score     *repository.WorkoutScoreRepository
}

type services struct {
	auth      *service.AuthService
	reconcile *service.ReconcileService
	access    *service.AccessService
	practice  *service.PracticeService
	search    *service.SearchService
}

type controllers struct {
	auth     *controller.AuthController
	workout  *controller.WorkoutController
	practice *controller.PracticeController
	health   *controller.HealthController
}

func initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		workout:   repository.NewWorkoutRepository(db),
		offering:  repository.NewWorkoutOfferingRepository(db),
		extension: repository.NewStudentExtensionRepository(db),
		score:     repository.NewWorkoutScoreRepository(db),
	}
}

func initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, service.Capability) {
	capability := service.NewDBCapability(repos.user)
	sessions := service.NewRedisSessionStore(rdb, cfg.Session.TTL)
	access := service.NewAccessService(repos.extension, service.NewTermShutdown())

	return &services{
		auth:      service.NewAuthService(repos.user, cfg),
		reconcile: service.NewReconcileService(repos.workout, db),
		access:    access,
		practice:  service.NewPracticeService(repos.workout, repos.offering, repos.score, access, sessions, db),
		search:    service.NewSearchService(repos.workout, capability, db),
	}, capability
}

func initControllers(s *services, capability service.Capability, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		workout:  controller.NewWorkoutController(s.reconcile, s.search, capability),
		practice: controller.NewPracticeController(s.practice),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := initRepositories(db)
	svcs, capability := initServices(repos, cfg, db, rdb)
	ctrls := initControllers(svcs, capability, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("workout-gym", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
