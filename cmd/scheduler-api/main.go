package main

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/acadops/course-scheduler-api/api/swagger"
	"github.com/acadops/course-scheduler-api/internal/handler"
	"github.com/acadops/course-scheduler-api/internal/middleware"
	"github.com/acadops/course-scheduler-api/internal/models"
	"github.com/acadops/course-scheduler-api/internal/repository"
	"github.com/acadops/course-scheduler-api/internal/service"
	"github.com/acadops/course-scheduler-api/migrations"
	"github.com/acadops/course-scheduler-api/pkg/cache"
	"github.com/acadops/course-scheduler-api/pkg/config"
	"github.com/acadops/course-scheduler-api/pkg/database"
	"github.com/acadops/course-scheduler-api/pkg/lock"
	"github.com/acadops/course-scheduler-api/pkg/logger"
	corsmiddleware "github.com/acadops/course-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadops/course-scheduler-api/pkg/middleware/requestid"
)

// @title Course Scheduler API
// @version 0.1.0
// @description Greedy semester schedule generation for university departments
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := migrations.Up(db.DB); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	// Redis is optional: without it the semester lock degrades to a no-op and
	// conflict results are recomputed on every call.
	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, running without lock and cache", "error", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	validate := validator.New()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	offeringRepo := repository.NewOfferingRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	entryRepo := repository.NewScheduleEntryRepository(db)
	loadRepo := repository.NewFacultyLoadRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	tokenService := service.NewTokenService(cfg.JWT)

	planner := service.NewSlotPlanner(cfg.Scheduler, rng, logr)
	assigner := service.NewRoomAssigner(rng, logr)
	loadTracker := service.NewLoadTracker(loadRepo, logr)
	builder := service.NewScheduleBuilder(
		offeringRepo, facultyRepo, classroomRepo, semesterRepo, sectionRepo,
		loadTracker, planner, assigner, entryRepo, metricsService, validate, logr,
	)
	persister := service.NewSchedulePersister(db, entryRepo, offeringRepo, loadRepo, cacheRepo, validate, logr)
	detector := service.NewConflictDetector(entryRepo, cacheRepo, cfg.Scheduler.ConflictCacheTTL, validate, logr)
	reader := service.NewScheduleReader(entryRepo, logr)

	var lockClient lock.Client
	if redisClient != nil {
		lockClient = redisClient
	}
	semesterLock := lock.NewSemesterLock(lockClient, cfg.Scheduler.GenerationLockTTL)

	schedulerHandler := handler.NewSchedulerHandler(builder, persister, detector, reader, semesterLock, metricsService, logr)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenService))

	schedules := api.Group("/schedules")
	schedules.GET("", schedulerHandler.List)
	schedules.POST("/conflicts", schedulerHandler.DetectConflicts)

	writers := schedules.Group("")
	writers.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleChair))
	writers.POST("/generate", schedulerHandler.Generate)
	writers.POST("/save", schedulerHandler.Save)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
