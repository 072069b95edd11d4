package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/blockverse-mods/internal/audit"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/middleware"
	"github.com/annel0/blockverse-mods/internal/worldedit"
)

// RestServer административный REST API поверх сервиса правок мира
type RestServer struct {
	router     *gin.Engine
	edits      *worldedit.Service
	audit      audit.Recorder
	port       int
	metrics    *ServerMetrics
	logger     *logging.Logger
	httpServer *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port       int                   // порт, 0 → 8088
	WorldEdit  *worldedit.Service    // обязателен
	Audit      audit.Recorder        // nil отключает /api/audit
	Registerer prometheus.Registerer // nil → prometheus.DefaultRegisterer
	Gatherer   prometheus.Gatherer   // nil → prometheus.DefaultGatherer
	Logger     *logging.Logger
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == 0 {
		config.Port = 8088
	}
	if config.Logger == nil {
		config.Logger = logging.GetComponentLogger("REST")
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())
	router.Use(otelgin.Middleware("rest_api"))

	promMw := middleware.NewPrometheusMiddleware("rest_api", config.Registerer)
	router.Use(promMw.Handler())
	middleware.RegisterMetricsEndpoint(router, config.Gatherer)

	server := &RestServer{
		router:  router,
		edits:   config.WorldEdit,
		audit:   config.Audit,
		port:    config.Port,
		metrics: NewServerMetrics(),
		logger:  config.Logger,
	}
	server.setupRoutes()
	server.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/blocks/:x/:y/:z", rs.handleGetBlock)
		api.PUT("/blocks/:x/:y/:z", rs.handleSetBlock)
		api.GET("/columns/:x/:z/highest", rs.handleHighest)
		api.GET("/columns/:x/:z/safe", rs.handleSafe)
		api.GET("/audit", rs.handleAudit)
	}

	edits := api.Group("/edits")
	{
		edits.POST("/fill", rs.handleFill)
		edits.POST("/hollow", rs.handleHollow)
		edits.POST("/replace", rs.handleReplace)
		edits.POST("/clear-column", rs.handleClearColumn)
	}
}

// Handler возвращает http.Handler роутера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// handleHealth состояние процесса и мира
func (rs *RestServer) handleHealth(c *gin.Context) {
	w := rs.edits.World()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "ok",
		Data: gin.H{
			"status":        "ok",
			"time":          time.Now().Unix(),
			"process":       rs.metrics.Snapshot(),
			"loaded_chunks": len(w.LoadedChunks()),
			"dirty_chunks":  len(w.DirtyChunks()),
		},
	})
}

// Start запускает REST сервер и блокируется до Shutdown
func (rs *RestServer) Start() error {
	rs.logger.Info("REST API слушает :%d", rs.port)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("rest api: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (rs *RestServer) Shutdown(ctx context.Context) error {
	return rs.httpServer.Shutdown(ctx)
}
