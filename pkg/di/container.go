package di

import (
	"context"
	"time"

	"gorm.io/gorm"

	"classtrack/application/serviceimpl"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
	"classtrack/infrastructure/camera"
	"classtrack/infrastructure/faceapi"
	"classtrack/infrastructure/oauth"
	"classtrack/infrastructure/postgres"
	"classtrack/infrastructure/redis"
	"classtrack/infrastructure/stream"
	"classtrack/infrastructure/websocket"
	"classtrack/interfaces/api/handlers"
	"classtrack/pkg/config"
	"classtrack/pkg/logger"
	"classtrack/pkg/scheduler"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB               *gorm.DB
	RedisClient      *redis.Client
	EventScheduler   scheduler.EventScheduler
	GoogleOAuth      *oauth.GoogleOAuth
	WebSocketManager *websocket.Manager
	StreamSupervisor *stream.Supervisor

	// Repositories
	UserRepository         repositories.UserRepository
	StudentRepository      repositories.StudentRepository
	FaceEncodingRepository repositories.FaceEncodingRepository
	AttendanceRepository   repositories.AttendanceRepository
	StreamConfigRepository repositories.StreamConfigRepository
	CurriculumRepository   repositories.CurriculumRepository

	// Services
	AuthService       services.AuthService
	StudentService    services.StudentService
	MatcherService    services.MatcherService
	AttendanceService services.AttendanceService
	PipelineService   services.PipelineService
	CurriculumService services.CurriculumService
	DashboardService  services.DashboardService

	// Clients
	FaceClient *faceapi.FaceClient
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	c.autoStartPipeline()

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Startup("config_loaded", "Configuration loaded", nil)
	return nil
}

func (c *Container) initInfrastructure() error {
	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Host:     c.Config.Database.Host,
		Port:     c.Config.Database.Port,
		User:     c.Config.Database.User,
		Password: c.Config.Database.Password,
		DBName:   c.Config.Database.DBName,
		SSLMode:  c.Config.Database.SSLMode,
	})
	if err != nil {
		return err
	}
	c.DB = db
	logger.Startup("db_connected", "Database connected", nil)

	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Startup("db_migrated", "Database migrated", nil)

	// Redis is an accelerator; the app runs without it
	redisClient, err := redis.NewClient(
		c.Config.Redis.Host+":"+c.Config.Redis.Port,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
	)
	if err != nil {
		logger.StartupWarn("redis_connection_failed", "Redis connection failed, running without cache", map[string]interface{}{"error": err.Error()})
	} else {
		c.RedisClient = redisClient
		logger.Startup("redis_connected", "Redis connected", nil)
	}

	c.GoogleOAuth = oauth.NewGoogleOAuth(
		c.Config.Google.ClientID,
		c.Config.Google.ClientSecret,
		c.Config.Google.RedirectURL,
	)
	if !c.GoogleOAuth.IsConfigured() {
		logger.StartupWarn("google_oauth_not_configured", "Google OAuth not configured", nil)
	} else {
		logger.Startup("google_oauth_initialized", "Google OAuth initialized", nil)
	}

	c.WebSocketManager = websocket.NewManager()
	logger.Startup("websocket_initialized", "WebSocket manager initialized", nil)

	// The client is always constructed; availability is probed, not required
	c.FaceClient = faceapi.NewFaceClient(c.Config.FaceAPI.BaseURL)
	if c.Config.FaceAPI.Enabled {
		if !c.FaceClient.IsAvailable(context.Background()) {
			logger.StartupWarn("face_api_unreachable", "Face API not reachable yet", map[string]interface{}{"url": c.Config.FaceAPI.BaseURL})
		} else {
			logger.Startup("face_api_connected", "Face API reachable", nil)
		}
	} else {
		logger.StartupWarn("face_api_disabled", "Face API disabled, recognition pipeline will not run", nil)
	}

	return nil
}

func (c *Container) initRepositories() error {
	c.UserRepository = postgres.NewUserRepository(c.DB)
	c.StudentRepository = postgres.NewStudentRepository(c.DB)
	c.FaceEncodingRepository = postgres.NewFaceEncodingRepository(c.DB)
	c.AttendanceRepository = postgres.NewAttendanceRepository(c.DB)
	c.StreamConfigRepository = postgres.NewStreamConfigRepository(c.DB)
	c.CurriculumRepository = postgres.NewCurriculumRepository(c.DB)
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) initServices() error {
	location, err := time.LoadLocation(c.Config.Stream.Timezone)
	if err != nil {
		logger.StartupWarn("timezone_invalid", "Invalid timezone, falling back to UTC", map[string]interface{}{"timezone": c.Config.Stream.Timezone})
		location = time.UTC
	}

	// A nil *redis.Client must not become a non-nil PresenceCache interface
	var presence serviceimpl.PresenceCache
	if c.RedisClient != nil {
		presence = c.RedisClient
	}

	c.AuthService = serviceimpl.NewAuthService(c.UserRepository, c.GoogleOAuth, c.Config.JWT.Secret)
	c.MatcherService = serviceimpl.NewMatcherService(c.FaceEncodingRepository, services.DefaultMatchThreshold)
	c.AttendanceService = serviceimpl.NewAttendanceService(
		c.AttendanceRepository,
		c.StudentRepository,
		presence,
		c.WebSocketManager,
		location,
	)
	c.StudentService = serviceimpl.NewStudentService(c.StudentRepository, c.FaceEncodingRepository, c.FaceClient)

	// Recognition is opt-in; without an embedder the supervisor refuses
	// enabled configs instead of starting a session that cannot process frames
	var embedder services.Embedder
	if c.Config.FaceAPI.Enabled {
		embedder = c.FaceClient
	}

	c.StreamSupervisor = stream.NewSupervisor(
		c.Config.Stream,
		camera.NewMJPEGDialer(10*time.Second),
		embedder,
		c.MatcherService,
		c.AttendanceService,
		c.WebSocketManager,
	)
	c.PipelineService = serviceimpl.NewPipelineService(c.StreamConfigRepository, c.StreamSupervisor)

	c.CurriculumService = serviceimpl.NewCurriculumService(c.CurriculumRepository)
	c.DashboardService = serviceimpl.NewDashboardService(
		c.AttendanceRepository,
		c.StudentRepository,
		c.FaceEncodingRepository,
		c.CurriculumRepository,
		c.AttendanceService,
		c.PipelineService,
		c.RedisClient,
	)

	logger.Startup("services_initialized", "Services initialized", nil)
	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()
	c.EventScheduler.Start()
	logger.Startup("scheduler_started", "Event scheduler started", nil)

	// Nightly summary keeps the attendance log category useful for audits
	err := c.EventScheduler.AddJob("daily-attendance-summary", "55 23 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		today := c.AttendanceService.Today()
		entries, err := c.AttendanceService.DailyAttendance(ctx, today)
		if err != nil {
			logger.SchedulerError("daily_summary_failed", "Daily attendance summary failed", err, nil)
			return
		}

		present := 0
		for _, e := range entries {
			if e.Status == "present" {
				present++
			}
		}

		logger.Scheduler("daily_summary_done", "Daily attendance summary", map[string]interface{}{
			"date":    today,
			"records": len(entries),
			"present": present,
		})
	})
	if err != nil {
		logger.StartupWarn("daily_summary_schedule_failed", "Failed to schedule daily summary", map[string]interface{}{"error": err.Error()})
	} else {
		logger.Startup("daily_summary_scheduled", "Daily attendance summary scheduled", nil)
	}

	return nil
}

// autoStartPipeline resumes the stream session on boot when an enabled config
// was saved before the restart.
func (c *Container) autoStartPipeline() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := c.StreamConfigRepository.Get(ctx)
	if err != nil {
		logger.StartupWarn("pipeline_config_load_failed", "Failed to load stream config", map[string]interface{}{"error": err.Error()})
		return
	}
	if cfg == nil || !cfg.Enabled {
		logger.Startup("pipeline_idle", "No enabled stream config, pipeline idle", nil)
		return
	}

	if err := c.StreamSupervisor.Apply(cfg); err != nil {
		logger.StartupWarn("pipeline_not_started", "Saved stream config could not be applied", map[string]interface{}{"error": err.Error()})
		return
	}
	logger.Startup("pipeline_started", "Stream pipeline resumed from saved config", map[string]interface{}{"url": cfg.URL})
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	if c.StreamSupervisor != nil {
		c.StreamSupervisor.Stop()
		logger.Startup("pipeline_stopped", "Stream pipeline stopped", nil)
	}

	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
		logger.Startup("scheduler_stopped", "Event scheduler stopped", nil)
	}

	if c.WebSocketManager != nil {
		logger.Startup("websocket_shutdown", "Disconnecting websocket clients", map[string]interface{}{"clients": c.WebSocketManager.ClientCount()})
		c.WebSocketManager.Shutdown()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.StartupWarn("redis_close_failed", "Failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_closed", "Redis connection closed", nil)
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.StartupWarn("db_close_failed", "Failed to close database connection", map[string]interface{}{"error": err.Error()})
			} else {
				logger.Startup("db_closed", "Database connection closed", nil)
			}
		}
	}

	logger.Startup("cleanup_completed", "Cleanup completed", nil)
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	svcs := &handlers.Services{
		AuthService:       c.AuthService,
		StudentService:    c.StudentService,
		AttendanceService: c.AttendanceService,
		PipelineService:   c.PipelineService,
		CurriculumService: c.CurriculumService,
		DashboardService:  c.DashboardService,
		Embedder:          c.FaceClient,
	}
	return svcs
}
