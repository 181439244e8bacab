package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/brightpath-edu/retention-service/pkg/handler"
)

// HTTPServer serves the service's JSON API.
type HTTPServer struct {
	server       *http.Server
	port         int
	serviceName  string
	environment  string
	allowOrigins []string
	retention    *handler.RetentionHandler
}

// NewHTTPServer creates the API server. Routes are mounted in Setup.
func NewHTTPServer(port int, serviceName, environment string, allowOrigins []string, retention *handler.RetentionHandler) *HTTPServer {
	return &HTTPServer{
		port:         port,
		serviceName:  serviceName,
		environment:  environment,
		allowOrigins: allowOrigins,
		retention:    retention,
	}
}

// Setup builds the gin router with CORS, tracing middleware, and all
// service routes.
func (s *HTTPServer) Setup() error {
	if s.environment != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(s.serviceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.retention.RegisterRoutes(router)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: router,
	}

	return nil
}

// Start begins serving the API on the configured port.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("http server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("http server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the API server, draining in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down http server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("http server stopped")
	return nil
}
