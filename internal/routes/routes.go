// internal/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/handler"
	"label-service/internal/middleware"
	"label-service/internal/service"
	"label-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config           *config.Config
	logger           *zap.Logger
	catalog          *catalog.Registry
	printService     *service.PrintService
	discoveryService *service.DiscoveryService
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	registry *catalog.Registry,
	printService *service.PrintService,
	discoveryService *service.DiscoveryService,
) *Router {
	return &Router{
		config:           config,
		logger:           logger,
		catalog:          registry,
		printService:     printService,
		discoveryService: discoveryService,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	r.addMiddleware(router)
	r.addRoutes(router)
	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.catalog, r.config, r.logger)
	catalogHandler := handler.NewCatalogHandler(r.catalog, r.logger)
	printHandler := handler.NewPrintHandler(r.printService, r.config.Server.MaxUploadBytes, r.logger)

	r.addHealthRoutes(router, healthHandler)

	apiV1 := router.Group("/api/v1")
	r.addCatalogRoutes(apiV1, catalogHandler)
	r.addPrintRoutes(apiV1, printHandler)

	if r.discoveryService != nil {
		r.addDiscoveryRoutes(apiV1, handler.NewDiscoveryHandler(r.discoveryService, r.logger))
	}

	r.logger.Info("All routes configured successfully")
}

// addHealthRoutes sets up health check routes
func (r *Router) addHealthRoutes(router *gin.Engine, handler *handler.HealthHandler) {
	health := router.Group("")
	{
		health.GET("/health", handler.HealthCheck)
		health.GET("/ready", handler.ReadinessCheck)
		health.GET("/live", handler.LivenessCheck)
	}
}

// addCatalogRoutes sets up label and model catalog routes
func (r *Router) addCatalogRoutes(api *gin.RouterGroup, handler *handler.CatalogHandler) {
	labels := api.Group("/labels")
	{
		labels.GET("", handler.ListLabels)
		labels.GET("/:label_id", handler.GetLabel)
	}

	models := api.Group("/models")
	{
		models.GET("", handler.ListModels)
		models.GET("/:model_id", handler.GetModel)
	}
}

// addPrintRoutes sets up conversion and printing routes
func (r *Router) addPrintRoutes(api *gin.RouterGroup, handler *handler.PrintHandler) {
	api.POST("/convert", handler.ConvertImages)
	api.POST("/preview", handler.PreviewImage)
	api.POST("/print", handler.PrintImages)
	api.GET("/printer/status", handler.GetPrinterStatus)
}

// addDiscoveryRoutes sets up printer discovery routes
func (r *Router) addDiscoveryRoutes(api *gin.RouterGroup, handler *handler.DiscoveryHandler) {
	discovery := api.Group("/discovery")
	{
		discovery.GET("", handler.ScanPrinters)
		discovery.GET("/scan", handler.ScanPrinters)
		discovery.GET("/scanners", handler.GetScanners)
	}
}
