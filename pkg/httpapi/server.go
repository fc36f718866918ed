package httpapi

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/version"
)

// Server is the minimal read-only HTTP status surface for an in-flight
// or completed learning run.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	status     *Status
}

// New creates a Server reporting on status. mode is forwarded to
// gin.SetMode ("debug", "release", or "test"); an empty mode leaves
// gin's current mode untouched.
func New(status *Status, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{engine: gin.Default(), status: status}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)
	s.engine.GET("/rounds", s.listRoundsHandler)
	s.engine.GET("/rounds/:n", s.roundHandler)
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	RunRoot    string `json:"run_root,omitempty"`
	RoundsDone int    `json:"rounds_done"`
}

func (s *Server) healthHandler(c *gin.Context) {
	runRoot, rounds := s.status.Snapshot()
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    version.Full(),
		RunRoot:    runRoot,
		RoundsDone: len(rounds),
	})
}

func (s *Server) listRoundsHandler(c *gin.Context) {
	runRoot, rounds := s.status.Snapshot()
	c.JSON(http.StatusOK, gin.H{"run_root": runRoot, "rounds": rounds})
}

func (s *Server) roundHandler(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "round must be an integer"})
		return
	}
	info, ok := s.status.Round(n)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "round not found (or not finished yet)"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// Start starts the HTTP server on addr and blocks until it stops; run
// it in its own goroutine and call Shutdown to stop it.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener,
// for tests that need a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
