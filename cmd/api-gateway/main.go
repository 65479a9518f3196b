package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/cse-aiml/timetable-api/api/swagger"
	"github.com/cse-aiml/timetable-api/internal/handler"
	"github.com/cse-aiml/timetable-api/internal/middleware"
	"github.com/cse-aiml/timetable-api/internal/models"
	"github.com/cse-aiml/timetable-api/internal/repository"
	"github.com/cse-aiml/timetable-api/internal/service"
	"github.com/cse-aiml/timetable-api/pkg/cache"
	"github.com/cse-aiml/timetable-api/pkg/config"
	"github.com/cse-aiml/timetable-api/pkg/database"
	"github.com/cse-aiml/timetable-api/pkg/logger"
	corsmiddleware "github.com/cse-aiml/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cse-aiml/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Weekly timetable engine for the department ERP
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	var cacheRepo service.CacheRepository
	if cfg.Timetable.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	validate := validator.New()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, logr, cfg.Timetable.CacheEnabled)

	timetableRepo := repository.NewTimetableRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	userRepo := repository.NewUserRepository(db)

	facultySvc := service.NewFacultyService(facultyRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, facultyRepo, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, facultyRepo, courseRepo, cacheSvc, validate, logr, cfg.Timetable.PeriodsPerDay)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, validate, logr)
	exportSvc := service.NewExportService(timetableSvc, logr, cfg.Export.Enabled)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", middleware.JWT(authSvc), authHandler.Me)

	api.GET("/timetable", timetableHandler.List)
	api.GET("/timetable/free-periods", timetableHandler.FreePeriods)
	api.GET("/timetable/:day", timetableHandler.GetByDay)
	api.GET("/rooms/availability", timetableHandler.RoomAvailability)
	api.GET("/faculties/:id/schedule", timetableHandler.FacultySchedule)

	staff := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty))
	staff.POST("/timetable/slots", timetableHandler.CreateSlot)
	staff.PATCH("/timetable/:day/slots/:period", timetableHandler.UpdateSlot)
	staff.DELETE("/timetable/:day/slots/:period", timetableHandler.DeleteSlot)

	api.GET("/faculties", facultyHandler.List)
	api.GET("/faculties/:id", facultyHandler.Get)

	admin := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/faculties", facultyHandler.Create)
	admin.PUT("/faculties/:id", facultyHandler.Update)
	admin.DELETE("/faculties/:id", facultyHandler.Deactivate)

	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)
	admin.POST("/courses", courseHandler.Create)
	admin.PUT("/courses/:id", courseHandler.Update)
	admin.DELETE("/courses/:id", courseHandler.Delete)

	if exportSvc.Enabled() {
		api.GET("/exports/timetable", exportHandler.Timetable)
		api.GET("/exports/faculties/:id/schedule", exportHandler.FacultySchedule)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
