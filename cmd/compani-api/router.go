package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sophiemoustard/compani-api-sub005/api/swagger"
	"github.com/sophiemoustard/compani-api-sub005/internal/handler"
	"github.com/sophiemoustard/compani-api-sub005/internal/middleware"
	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	"github.com/sophiemoustard/compani-api-sub005/internal/service"
	"github.com/sophiemoustard/compani-api-sub005/pkg/config"
	"github.com/sophiemoustard/compani-api-sub005/pkg/logger"
	corsmiddleware "github.com/sophiemoustard/compani-api-sub005/pkg/middleware/cors"
	reqidmiddleware "github.com/sophiemoustard/compani-api-sub005/pkg/middleware/requestid"
)

type routerDeps struct {
	auth        *service.AuthService
	authz       *service.AuthorizationService
	metrics     *service.MetricsService
	histories   *handler.CourseHistoryHandler
	attendances *handler.AttendanceHandler
	courses     *handler.CourseHandler
	observe     *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, middleware.ActorLogFields))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.observe.Health)
	r.GET("/metrics", deps.observe.Prometheus)
	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(deps.auth))

	courses := api.Group("/courses/:id")
	courses.GET("/histories", middleware.RequireCourseCapability(deps.authz, models.CapabilityReadHistory), deps.histories.List)
	courses.PUT("", deps.courses.Update)
	courses.POST("/trainees", deps.courses.AddTrainee)
	courses.DELETE("/trainees/:traineeId", deps.courses.RemoveTrainee)
	courses.POST("/companies", deps.courses.AddCompany)
	courses.DELETE("/companies/:companyId", deps.courses.RemoveCompany)
	courses.POST("/slots", deps.courses.CreateSlot)
	courses.POST("/archive", deps.courses.Archive)
	courses.POST("/unarchive", deps.courses.Unarchive)

	api.PUT("/courseslots/:id", deps.courses.UpdateSlot)
	api.DELETE("/courseslots/:id", deps.courses.DeleteSlot)

	api.POST("/attendances", deps.attendances.Create)
	api.GET("/attendances", deps.attendances.List)
	api.GET("/attendances/unsubscribed", deps.attendances.ListUnsubscribed)
	api.DELETE("/attendances", deps.attendances.Delete)
	api.GET("/trainees/:id/unsubscribed-attendances", deps.attendances.TraineeUnsubscribed)

	return r
}
