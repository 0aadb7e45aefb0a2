package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/kode4food/paybutton"
	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/util"
)

type (
	// Server implements the development HTTP server
	Server struct {
		remote  *Remote
		journal AttemptStore
		hub     *telemetry.Hub
		sockets util.Set[*Client]
		mu      sync.Mutex
	}

	// AttemptStore reads journaled payment attempts
	AttemptStore interface {
		Get(
			context.Context, api.ButtonSessionID, api.PaymentID,
		) (*api.AttemptRecord, error)
		List(
			context.Context, api.ButtonSessionID,
		) ([]*api.AttemptRecord, error)
	}
)

const StatusHealthy = "healthy"

// NewServer creates a new development server. A nil journal disables the
// attempt endpoints
func NewServer(
	remote *Remote, journal AttemptStore, hub *telemetry.Hub,
) *Server {
	if remote == nil {
		remote = NewRemote()
	}
	return &Server{
		remote:  remote,
		journal: journal,
		hub:     hub,
		sockets: util.Set[*Client]{},
	}
}

// Remote returns the mock remote services backing the GraphQL endpoint
func (s *Server) Remote() *Remote {
	return s.remote
}

// SetupRoutes configures and returns the HTTP router with all endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)

	// Mock remote services
	router.POST("/graphql", s.handleGraphQL)
	router.POST("/fraudnet", s.handleFraudnet)

	// Attempt journal
	router.GET("/attempts", s.listAttempts)
	router.GET("/attempts/:sessionID/:paymentID", s.getAttempt)

	// WebSocket
	router.GET("/ws", s.handleWebSocket)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: paybutton.Name,
		Version: paybutton.Version,
		Status:  StatusHealthy,
	})
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := s.sockets.Items()
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
