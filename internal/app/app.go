package app

import (
	"context"
	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/controller"
	"flowlearn_backend/internal/repository"
	"flowlearn_backend/internal/service"
	"flowlearn_backend/pkg/database"
	"flowlearn_backend/pkg/logger"
	"flowlearn_backend/pkg/monitoring"
	"flowlearn_backend/pkg/security"
	"flowlearn_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	challenge   *repository.ChallengeRepository
	submission  *repository.SubmissionRepository
	achievement *repository.AchievementRepository
	translation *repository.TranslationRepository
	subscriber  *repository.SubscriberRepository
	assessment  *repository.AssessmentRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	storage      *service.StorageService
	subscription *service.SubscriptionService
	challenge    *service.ChallengeService
	submission   *service.SubmissionService
	ai           *service.AIService
	evaluation   *service.EvaluationService
	progression  *service.ProgressionService
	achievement  *service.AchievementService
	leaderboard  *service.LeaderboardService
	translation  *service.TranslationService
	email        *service.EmailService
	assessment   *service.AssessmentService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	challenge    *controller.ChallengeController
	submission   *controller.SubmissionController
	translation  *controller.TranslationController
	email        *controller.EmailController
	subscription *controller.SubscriptionController
	achievement  *controller.AchievementController
	assessment   *controller.AssessmentController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig swaps in a reloaded config and notifies registered callbacks.
// Only settings read per-request pick up the change; server port and
// database connections keep their boot-time values.
func (a *App) ApplyConfig(cfg *config.Config) {
	cfg.ForceMigrate = a.Config.ForceMigrate
	cfg.MigrateOnly = a.Config.MigrateOnly
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		challenge:   repository.NewChallengeRepository(db),
		submission:  repository.NewSubmissionRepository(db),
		achievement: repository.NewAchievementRepository(db),
		translation: repository.NewTranslationRepository(db),
		subscriber:  repository.NewSubscriberRepository(db),
		assessment:  repository.NewAssessmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)

	s.subscription = service.NewSubscriptionService(repos.subscriber, repos.user, repos.submission, cfg.Stripe)
	s.challenge = service.NewChallengeService(repos.challenge, s.subscription)
	s.submission = service.NewSubmissionService(repos.submission, repos.challenge, s.subscription)

	s.ai = service.NewAIService(cfg.AI)
	s.leaderboard = service.NewLeaderboardService(repos.user, rdb)
	s.achievement = service.NewAchievementService(repos.achievement, repos.user, repos.submission)
	s.progression = service.NewProgressionService(repos.user, s.user, s.leaderboard, s.achievement)
	s.evaluation = service.NewEvaluationService(repos.submission, repos.challenge, s.ai, s.progression)

	s.translation = service.NewTranslationService(repos.translation, service.NewDeepLClient(cfg.DeepL), rdb)
	s.email = service.NewEmailService(cfg.Resend)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.user)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.auth, s.user, s.storage),
		challenge:    controller.NewChallengeController(s.challenge, s.auth),
		submission:   controller.NewSubmissionController(s.submission, s.evaluation, s.auth),
		translation:  controller.NewTranslationController(s.translation),
		email:        controller.NewEmailController(s.email),
		subscription: controller.NewSubscriptionController(s.subscription, s.auth),
		achievement:  controller.NewAchievementController(s.achievement, s.leaderboard),
		assessment:   controller.NewAssessmentController(s.assessment),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
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

func (a *App) startBackgroundTasks(s *services) {
	// Downgrade lapsed subscribers once an hour. Stripe webhooks normally
	// handle this; the sweep covers missed deliveries.
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			if err := s.subscription.ExpireLapsed(); err != nil {
				logger.Log.Error("subscription expiry sweep failed", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("flowlearn-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

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

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
