package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Aidin1998/todolist/common/apiutil"
	"github.com/Aidin1998/todolist/internal/config"
	"github.com/Aidin1998/todolist/internal/todo"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	healthPath  = "/_status/health"
	metricsPath = "/_status/metrics"

	healthTimeout = 2 * time.Second
)

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	todos   *todo.Service
	router  *gin.Engine
	httpSrv *http.Server
}

// NewServer creates a new HTTP server around the to-do service
func NewServer(logger *zap.Logger, todos *todo.Service, cfg *config.Config) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if todos == nil {
		return nil, fmt.Errorf("todo service is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Server{
		cfg:    cfg,
		logger: logger.Named("http"),
		todos:  todos,
	}

	router, err := s.newRouter()
	if err != nil {
		return nil, err
	}
	s.router = router
	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) newRouter() (*gin.Engine, error) {
	router := gin.New()

	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))
	router.Use(otelgin.Middleware(s.cfg.Tracing.ServiceName))
	if s.cfg.Metrics.Enabled {
		router.Use(apiutil.MetricsMiddleware())
	}
	router.Use(apiutil.SecurityHeaders())
	if len(s.cfg.Server.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: s.cfg.Server.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	static, err := staticFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	router.StaticFS("/static", static)
	router.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	router.GET(healthPath, s.handleHealth)
	if s.cfg.Metrics.Enabled {
		router.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	}

	// /about is a static segment, so it takes precedence over the list route.
	router.GET("/", s.handleGetToday)
	router.POST("/", s.handleAddItem)
	router.POST("/delete", s.handleDeleteItem)
	router.GET("/about", s.handleAbout)
	router.GET("/:customListName", s.handleGetList)

	router.NoRoute(func(c *gin.Context) {
		apiutil.WriteTextError(c, http.StatusNotFound, "Not found.")
	})

	return router, nil
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("http server listening",
		zap.String("addr", s.httpSrv.Addr),
		zap.String("store", s.todos.Store().Backend()))

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	st := s.todos.Store()
	if err := st.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.String("backend", st.Backend()), zap.Error(err))
		apiutil.WriteErrorResponse(c, http.StatusServiceUnavailable, "store_unavailable", "store is not reachable", gin.H{"backend": st.Backend()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": st.Backend()})
}
