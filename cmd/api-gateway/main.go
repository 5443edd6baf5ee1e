package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/learnhub/lms-api/api/swagger"
	"github.com/learnhub/lms-api/internal/handler"
	"github.com/learnhub/lms-api/internal/middleware"
	"github.com/learnhub/lms-api/internal/models"
	"github.com/learnhub/lms-api/internal/repository"
	"github.com/learnhub/lms-api/internal/service"
	"github.com/learnhub/lms-api/pkg/cache"
	"github.com/learnhub/lms-api/pkg/config"
	"github.com/learnhub/lms-api/pkg/database"
	"github.com/learnhub/lms-api/pkg/logger"
	corsmiddleware "github.com/learnhub/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/learnhub/lms-api/pkg/middleware/requestid"
)

// @title LMS API
// @version 1.0.0
// @description Course catalog, enrollment and progress tracking backend
// @BasePath /api
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats cache disabled", "error", err)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	var statsCacheRepo *repository.CacheRepository
	if redisClient != nil {
		statsCacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer statsCacheRepo.Close() //nolint:errcheck
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	var statsSvc *service.StatsService
	if statsCacheRepo != nil {
		statsSvc = service.NewStatsService(enrollmentRepo, statsCacheRepo, cfg.Stats.CacheTTL, logr)
	} else {
		statsSvc = service.NewStatsService(enrollmentRepo, nil, cfg.Stats.CacheTTL, logr)
	}
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, statsSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, statsSvc, validate, logr)
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, statsSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.New())
	r.Use(logger.RequestLogger(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authRequired := middleware.JWT(authSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/user/me", authRequired, authHandler.Me)

	courses := api.Group("/courses")
	courses.GET("", courseHandler.ListAll)
	courses.GET("/my", authRequired, courseHandler.ListMine)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", authRequired, adminOnly, courseHandler.Create)
	courses.PUT("/:id", authRequired, adminOnly, courseHandler.Update)
	courses.DELETE("/:id", authRequired, adminOnly, courseHandler.Delete)

	enrollment := api.Group("/enrollment", authRequired)
	enrollment.GET("/my-courses", enrollmentHandler.MyCourses)
	enrollment.GET("/enrolled-stats", adminOnly, enrollmentHandler.EnrolledStats)
	enrollment.GET("/enrolled-stats/export", adminOnly, enrollmentHandler.ExportStats)
	enrollment.GET("/course/:courseId", enrollmentHandler.CourseStudents)
	enrollment.GET("/check/:courseId", enrollmentHandler.Check)
	enrollment.POST("/:courseId", enrollmentHandler.Enroll)
	enrollment.PUT("/:id/status", enrollmentHandler.UpdateProgress)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
