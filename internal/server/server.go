// Package server contains the HTTP and WebSocket handlers of the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "empleos/docs" // swagger docs
	"empleos/internal/auth"
	"empleos/internal/cache"
	"empleos/internal/config"
	"empleos/internal/database"
	"empleos/internal/featureflags"
	"empleos/internal/mailer"
	"empleos/internal/middleware"
	"empleos/internal/models"
	"empleos/internal/notifications"
	"empleos/internal/repository"
	"empleos/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	tokens       *auth.TokenManager
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager
	mailer       mailer.Mailer

	authService        *service.AuthService
	settingsService    *service.SettingsService
	profileService     *service.ProfileService
	educationService   *service.ItemService[models.Education, *models.Education]
	experienceService  *service.ItemService[models.Experience, *models.Experience]
	skillService       *service.ItemService[models.Skill, *models.Skill]
	languageService    *service.ItemService[models.Language, *models.Language]
	portfolioService   *service.ItemService[models.PortfolioItem, *models.PortfolioItem]
	jobService         *service.JobService
	applicationService *service.ApplicationService
	savedJobService    *service.SavedJobService
	moderationService  *service.ModerationService
	adminService       *service.AdminService
	reportService      *service.ReportService
	dashboardService   *service.DashboardService
}

// NewServer connects to the database and Redis, then builds the server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client disables caching and notifications.
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	return NewServerWithMailer(cfg, db, redisClient, mailer.New(cfg))
}

// NewServerWithMailer is NewServerWithDeps with an explicit mail transport.
func NewServerWithMailer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mail mailer.Mailer) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("config and database are required")
	}

	users := repository.NewUserRepository(db)
	companies := repository.NewCompanyRepository(db)
	omils := repository.NewOMILRepository(db)
	profiles := repository.NewProfileRepository(db)
	jobs := repository.NewJobRepository(db)
	apps := repository.NewApplicationRepository(db)
	saved := repository.NewSavedJobRepository(db)
	moderationRepo := repository.NewModerationRepository(db)
	audit := repository.NewAuditLogRepository(db)
	settingsRepo := repository.NewSettingRepository(db)
	stats := repository.NewStatsRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("empleos-api"),
		userRepo:       users,
		tokens:         auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour, redisClient),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		mailer:         mail,
	}

	s.settingsService = service.NewSettingsService(settingsRepo)
	s.authService = service.NewAuthService(users, companies, tokenRepo, s.settingsService, s.tokens, mail, cfg.FrontendURL)
	s.profileService = service.NewProfileService(profiles, companies)
	s.educationService = service.NewItemService(repository.NewItemRepository[models.Education](db, "Education"), service.ValidateEducation)
	s.experienceService = service.NewItemService(repository.NewItemRepository[models.Experience](db, "Experience"), service.ValidateExperience)
	s.skillService = service.NewItemService(repository.NewItemRepository[models.Skill](db, "Skill"), service.ValidateSkill)
	s.languageService = service.NewItemService(repository.NewItemRepository[models.Language](db, "Language"), service.ValidateLanguage)
	s.portfolioService = service.NewItemService(repository.NewItemRepository[models.PortfolioItem](db, "Portfolio item"), service.ValidatePortfolioItem)
	s.jobService = service.NewJobService(jobs, companies, moderationRepo, s.settingsService)
	s.applicationService = service.NewApplicationService(apps, jobs, companies, s.settingsService, s.notifier)
	s.savedJobService = service.NewSavedJobService(saved, jobs)
	s.moderationService = service.NewModerationService(service.ModerationDeps{
		Repo:      moderationRepo,
		Companies: companies,
		Jobs:      jobs,
		OMILs:     omils,
		Users:     users,
		Notifier:  s.notifier,
		Mailer:    mail,
		Flags:     s.featureFlags,
	})
	s.adminService = service.NewAdminService(service.AdminDeps{
		Users:      users,
		Companies:  companies,
		OMILs:      omils,
		Profiles:   profiles,
		Moderation: moderationRepo,
		Audit:      audit,
		JWT:        s.tokens,
		Notifier:   s.notifier,
		Mailer:     mail,
		Flags:      s.featureFlags,
	})
	s.reportService = service.NewReportService(stats)
	s.dashboardService = service.NewDashboardService(stats, companies, jobs, apps)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Swagger UI loads inline scripts.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/swagger")
		},
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", s.AuthRequired(), s.AdminRequired(), monitor.New(monitor.Config{
		Title: "Empleos Inclusivos API Metrics",
	}))

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	authFailPolicy := middleware.FailOpen
	if s.config.IsProduction() {
		authFailPolicy = middleware.FailClosed
	}
	authQuota := func(name string, max int, window time.Duration) fiber.Handler {
		return middleware.Limit(s.redis, middleware.Quota{Name: name, Max: max, Window: window, Policy: authFailPolicy})
	}
	authGroup := api.Group("/auth")
	register := authGroup.Group("/register", s.MaintenanceGuard(), authQuota("register", 5, 10*time.Minute))
	register.Post("/", s.RegisterJobSeeker)
	register.Post("/company", s.RegisterCompany)
	register.Post("/omil", s.RegisterOMIL)
	loginLimit := authQuota("login", 10, 5*time.Minute)
	authGroup.Post("/login", loginLimit, s.Login)
	authGroup.Post("/login/company", loginLimit, s.LoginCompany)
	authGroup.Post("/verify-email", s.VerifyEmail)
	authGroup.Post("/resend-verification", authQuota("resend_verification", 3, 10*time.Minute), s.ResendVerification)
	authGroup.Post("/forgot-password", authQuota("forgot_password", 3, 10*time.Minute), s.ForgotPassword)
	authGroup.Post("/reset-password", s.ResetPassword)
	authGroup.Post("/logout", s.AuthRequired(), s.Logout)
	authGroup.Get("/me", s.AuthRequired(), s.Me)

	// Public job board
	publicJobs := api.Group("/jobs")
	publicJobs.Get("/", middleware.Limit(s.redis, middleware.Quota{Name: "job_search", Max: 60, Window: time.Minute}), s.ListPublicJobs)
	publicJobs.Get("/:id", s.GetPublicJob)

	// Live notifications; registered before the protected group so the
	// single-use ticket is consumed exactly once.
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	api.Get("/ws/notifications", s.AuthRequired(), s.NotificationSocket())

	// Admin routes. Registered ahead of the protected group so the role
	// check answers before the maintenance guard: admins are exempt from it
	// and everyone else gets 403.
	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/dashboard/stats", s.GetAdminStats)
	admin.Get("/feature-flags", s.GetFeatureFlags)

	adminUsers := admin.Group("/users")
	adminUsers.Get("/", s.ListUsers)
	adminUsers.Patch("/:id/status", s.SetUserStatus)
	adminUsers.Post("/:id/impersonate", s.ImpersonateUser)
	adminUsers.Get("/:id", s.GetUser)

	admin.Get("/companies", s.ListCompanyQueue)
	admin.Get("/jobs", s.ListJobQueue)
	admin.Get("/omils", s.ListOMILQueue)
	for _, kind := range []string{"companies", "jobs", "omils"} {
		admin.Patch("/"+kind+"/:id/approve", s.Approve(moderationEntities[kind]))
		admin.Patch("/"+kind+"/:id/reject", s.Reject(moderationEntities[kind]))
	}

	admin.Get("/audit-logs", s.ListAuditLogs)
	admin.Get("/settings", s.GetSettings)
	admin.Put("/settings", s.UpdateSettings)

	// Define /export/:type BEFORE generic /:type
	admin.Get("/reports/export/:type",
		middleware.Limit(s.redis, middleware.Quota{Name: "report_export", Max: 10, Window: time.Minute}), s.ExportReport)
	admin.Get("/reports/:type", s.GetReport)

	// Protected routes
	protected := api.Group("", s.AuthRequired(), s.MaintenanceGuard())
	seeker := s.RoleRequired(models.UserTypeJobSeeker)
	company := s.RoleRequired(models.UserTypeCompany)

	protected.Post("/jobs/:id/apply", seeker,
		middleware.Limit(s.redis, middleware.Quota{Name: "apply", Max: 30, Window: time.Hour}), s.ApplyToJob)

	// Notifications
	me := protected.Group("/me")
	me.Get("/notifications", s.GetNotifications)
	me.Delete("/notifications", s.ClearNotifications)

	// Job seeker profile and CV
	me.Get("/profile", seeker, s.GetMyProfile)
	me.Put("/profile", seeker, s.UpdateMyProfile)
	registerItemRoutes(me.Group("/education", seeker), s.educationService)
	registerItemRoutes(me.Group("/experience", seeker), s.experienceService)
	registerItemRoutes(me.Group("/skills", seeker), s.skillService)
	registerItemRoutes(me.Group("/languages", seeker), s.languageService)
	registerItemRoutes(me.Group("/portfolio", seeker), s.portfolioService)
	me.Get("/applications", seeker, s.GetMyApplications)

	savedJobs := me.Group("/saved-jobs", seeker)
	savedJobs.Get("/", s.GetSavedJobs)
	savedJobs.Get("/:id/check", s.CheckSavedJob)
	savedJobs.Post("/:id", s.SaveJob)
	savedJobs.Delete("/:id", s.UnsaveJob)

	// Company portal
	myCompany := me.Group("/company", company)
	myCompany.Get("/profile", s.GetCompanyProfile)
	myCompany.Put("/profile", s.UpdateCompanyProfile)
	myCompany.Get("/dashboard", s.GetCompanyDashboard)
	companyJobs := myCompany.Group("/jobs")
	companyJobs.Get("/", s.ListCompanyJobs)
	companyJobs.Post("/", s.CreateJob)
	// Define specific /:id/:action routes BEFORE generic /:id route
	companyJobs.Post("/:id/submit", s.SubmitJob)
	companyJobs.Post("/:id/close", s.CloseJob)
	companyJobs.Get("/:id", s.GetCompanyJob)
	companyJobs.Put("/:id", s.UpdateJob)
	companyJobs.Delete("/:id", s.DeleteJob)
	myCompany.Get("/applicants", s.ListApplicants)
	myCompany.Put("/applicants/:id/status", s.UpdateApplicantStatus)

}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness check requests. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Empleos Inclusivos API",
		BodyLimit: 2 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	models.ExposeDetails = !s.config.IsProduction()
	s.app = s.App()

	if s.redis != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Warn("notification hub wiring failed", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
