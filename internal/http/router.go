package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ra-autohaus/tracker/internal/config"
	"github.com/ra-autohaus/tracker/internal/http/handlers"
	"github.com/ra-autohaus/tracker/internal/http/middleware"
	"github.com/ra-autohaus/tracker/internal/service"
	"github.com/ra-autohaus/tracker/internal/warehouse"

	_ "github.com/ra-autohaus/tracker/docs"
)

func Router(cfg config.Config, store warehouse.Warehouse, engine *service.Engine, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Engine:    engine,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	// Integration endpoints stay open: upstream systems cannot send custom
	// headers.
	integration := r.Group("/integration")
	{
		integration.POST("/zapier/webhook", h.ZapierWebhook)
		integration.POST("/email/webhook", h.EmailWebhook)
		integration.POST("/flowers/webhook", h.FlowersWebhook)
	}

	api := r.Group("/api")
	{
		api.GET("/vehicles", h.VehiclesList)
		api.GET("/vehicles/:fin", h.VehicleDetails)
		api.GET("/vehicles/:fin/processes", h.VehicleProcesses)
		api.GET("/dashboard/kpis", h.DashboardKPIs)
		api.GET("/dashboard/sla", h.DashboardSLA)
		api.GET("/dashboard/warteschlangen", h.DashboardWarteschlangen)
		api.GET("/dashboard/workload", h.DashboardWorkload)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/processes", h.ProcessCreate)
		admin.PATCH("/processes/:id/status", h.ProcessStatusUpdate)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
