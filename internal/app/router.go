package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/sma-odoo-sync/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-odoo-sync/internal/middleware"
	"github.com/noah-isme/sma-odoo-sync/pkg/config"
	"github.com/noah-isme/sma-odoo-sync/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-odoo-sync/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-odoo-sync/pkg/middleware/requestid"
)

// Router builds the HTTP surface of the gateway.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger))
	r.Use(corsmiddleware.New(a.Config.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(a.Metrics, "/health", "/ready", "/metrics"))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(a.Metrics, a.Sessions)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if a.Metrics != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if a.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(a.Config.APIPrefix)

	authHandler := handler.NewAuthHandler(a.Sessions)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", authHandler.Session)

	secured := api.Group("")
	secured.Use(internalmiddleware.RequireSession(a.Sessions))
	secured.GET("/metrics/summary", metricsHandler.Summary)

	attendanceHandler := handler.NewAttendanceHandler(a.Services.Attendance)
	secured.POST("/attendance/bulk", attendanceHandler.Bulk)

	handler.NewListHandler(a.Lists, logger.Component(a.Logger, "http")).Register(secured)

	return r
}
