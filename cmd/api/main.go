package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edustack/learnhub-api/api/swagger"
	gqlapi "github.com/edustack/learnhub-api/internal/graphql"
	"github.com/edustack/learnhub-api/internal/handler"
	"github.com/edustack/learnhub-api/internal/middleware"
	"github.com/edustack/learnhub-api/internal/repository"
	"github.com/edustack/learnhub-api/internal/service"
	"github.com/edustack/learnhub-api/pkg/config"
	"github.com/edustack/learnhub-api/pkg/database"
	"github.com/edustack/learnhub-api/pkg/logger"
	"github.com/edustack/learnhub-api/pkg/mailer"
	corsmiddleware "github.com/edustack/learnhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edustack/learnhub-api/pkg/middleware/requestid"
)

// @title LearnHub API
// @version 1.0.0
// @description Online learning platform backend: courses, instructors, students, enrollment
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, db, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to mongo", "error", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logr.Sugar().Warnw("mongo disconnect failed", "error", err)
		}
	}()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	mail := mailer.NewSMTP(cfg.SMTP)
	recommender := service.NewRecommendationClient(cfg.Recommendations.BaseURL, cfg.Recommendations.Timeout, logr)

	courseRepo := repository.NewCourseRepository(db, metricsSvc)
	instructorRepo := repository.NewInstructorRepository(db, metricsSvc)
	studentRepo := repository.NewStudentRepository(db, metricsSvc)

	courseSvc := service.NewCourseService(courseRepo, instructorRepo, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, courseRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, courseRepo, mail, metricsSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(studentRepo, courseRepo, recommender, mail, metricsSvc, validate, logr)
	progressSvc := service.NewProgressService(studentRepo, validate, logr)

	courseHandler := handler.NewCourseHandler(courseSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, enrollmentSvc, progressSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	schema, err := gqlapi.NewSchema(gqlapi.Dependencies{
		Courses:     courseSvc,
		Instructors: instructorSvc,
		Students:    studentSvc,
		Enrollments: enrollmentSvc,
		Recommender: recommender,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to build graphql schema", "error", err)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	api := r.Group(cfg.APIPrefix)
	{
		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.POST("", courseHandler.Create)
			courses.GET("/name/:name", courseHandler.GetByName)
			courses.GET("/courseId/:courseId", courseHandler.GetByCourseID)
			courses.PUT("/courseId/:courseId", courseHandler.Update)
			courses.DELETE("/courseId/:courseId", courseHandler.Delete)
		}

		instructors := api.Group("/instructors")
		{
			instructors.GET("", instructorHandler.List)
			instructors.POST("", instructorHandler.Create)
			instructors.GET("/:id", instructorHandler.Get)
			instructors.PUT("/:id", instructorHandler.Update)
			instructors.DELETE("/:id", instructorHandler.Delete)
		}

		students := api.Group("/students")
		{
			students.GET("", studentHandler.List)
			students.POST("", studentHandler.Create)
			students.GET("/:id", studentHandler.Get)
			students.PUT("/:id", studentHandler.Update)
			students.DELETE("/:id", studentHandler.Delete)
			students.POST("/:id/enroll", studentHandler.Enroll)
			students.PUT("/:id/progress", studentHandler.UpdateProgress)
		}
	}

	r.POST("/graphql", gqlapi.Handler(schema))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		pingCtx, pingCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer pingCancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
