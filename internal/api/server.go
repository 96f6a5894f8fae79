package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/blockworld/internal/engine"
	"github.com/annel0/blockworld/internal/logging"
	"github.com/annel0/blockworld/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Config - параметры отладочного HTTP API
type Config struct {
	Port        string
	ServiceName string
	Engine      *engine.Engine
	// Registry - регистр для HTTP-метрик, nil - дефолтный
	Registry *prometheus.Registry
}

// GenericResponse - общий конверт ответов API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Server - отладочный HTTP API поверх движка мира
type Server struct {
	router  *gin.Engine
	srv     *http.Server
	eng     *engine.Engine
	metrics *ServerMetrics
	log     *logging.Logger
}

// NewServer создаёт сервер и настраивает маршруты
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = ":8088"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "blockworld"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.NewRequestLogger(nil).Handler())

	promMw := middleware.NewPrometheusMiddleware("blockworld_api", cfg.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	s := &Server{
		router:  router,
		eng:     cfg.Engine,
		metrics: NewServerMetrics(),
		log:     logging.GetComponentLogger("api"),
	}
	s.srv = &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/stats", s.handleStats)

		api.GET("/blocks", s.handleGetBlock)
		api.PUT("/blocks", s.handlePutBlock)
		api.PUT("/spans", s.handleFillSpan)

		api.GET("/columns", s.handleColumns)
		api.GET("/meshes", s.handleGetMesh)

		api.GET("/viewers", s.handleListViewers)
		api.POST("/viewers", s.handleCreateViewer)
		api.PUT("/viewers/:id", s.handleMoveViewer)
		api.DELETE("/viewers/:id", s.handleDeleteViewer)
	}
}

// Handler возвращает http.Handler сервера
func (s *Server) Handler() http.Handler { return s.router }

// Start слушает порт до вызова Shutdown
func (s *Server) Start() error {
	s.log.Info("🌐 Отладочный API слушает %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown мягко останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"tick":   s.eng.Stats().Tick,
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	cpuPercent, _ := s.metrics.GetCPUUsage()
	rss, _ := s.metrics.GetRSS()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Data: gin.H{
			"world": s.eng.Stats(),
			"server": gin.H{
				"uptime":      s.metrics.GetUptime(),
				"cpu_percent": cpuPercent,
				"rss_mb":      rss,
				"server_time": time.Now().Unix(),
			},
			"memory_details": s.metrics.GetDetailedMemoryStats(),
		},
	})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
}
