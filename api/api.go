package api

import (
	"errors"
	"log/slog"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"github.com/studyhallco/studyhall/pkg/analytics"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/mentor"
	"github.com/studyhallco/studyhall/pkg/recall"
	"github.com/studyhallco/studyhall/pkg/storage"
	"github.com/studyhallco/studyhall/pkg/worker"
)

// errorResponse is the JSON body every failed request carries.
type errorResponse struct {
	Error string `json:"error"`
}

// Server is the API server for the studyhall platform.
type Server struct {
	config   Config
	driver   storage.Driver
	engine   mentor.Engine
	querier  analytics.Querier
	pool     *worker.Pool
	searcher *recall.Searcher
	sessions *sessionStore
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates a new API server.
// The driver and pool are injected to allow sharing with other components.
func NewServer(config Config) (*Server, error) {
	if config.Driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if config.Engine == nil {
		return nil, errors.New("mentor engine is required")
	}
	if config.Pool == nil {
		return nil, errors.New("worker pool is required")
	}
	if config.Querier == nil {
		config.Querier = analytics.NewQuery(config.Driver)
	}
	if config.Accounts == nil {
		config.Accounts = DemoAccounts()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = DefaultSessionTTL
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	// Add compression middleware to handle responses
	app.Use(compress.New())

	s := &Server{
		config:   config,
		driver:   config.Driver,
		engine:   config.Engine,
		querier:  config.Querier,
		pool:     config.Pool,
		sessions: newSessionStore(config.SessionTTL),
		logger:   config.Logger,
		app:      app,
	}

	if config.VectorDriver != nil && config.Embedder != nil {
		s.searcher = recall.NewSearcher(config.Embedder, config.VectorDriver, config.Driver, config.Logger)
	}

	app.Get("/ping", s.handlePing)

	if config.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCP))
	}

	v1 := app.Group("/api/v1")

	v1.Post("/auth/login", s.handleLogin)
	v1.Post("/auth/logout", s.handleLogout)
	v1.Get("/auth/me", s.requireSession, s.handleMe)

	v1.Get("/quizzes", s.requireSession, s.handleListQuizzes)
	v1.Get("/quizzes/:slug", s.requireSession, s.handleGetQuiz)
	v1.Post("/quizzes/:slug/attempts", s.requireSession, s.handleSubmitAttempt)
	v1.Get("/attempts", s.requireSession, s.handleListAttempts)

	v1.Post("/checkins", s.requireSession, s.handleCheckIn)
	v1.Get("/checkins", s.requireSession, s.handleListCheckIns)
	v1.Post("/activity", s.requireSession, s.handleRecordActivity)

	v1.Get("/progress", s.requireSession, s.handleProgress)
	v1.Get("/progress/learner", s.requireSession, s.handleLearnerProgress)

	v1.Get("/plans", s.requireSession, s.handleListPlans)
	v1.Get("/plans/:id", s.requireSession, s.handleGetPlan)

	v1.Post("/mentor/chat", s.requireSession, s.handleMentorChat)
	v1.Post("/curriculum/generate", s.requireSession, s.handleGenerateCurriculum)
	v1.Get("/mentor/threads", s.requireSession, s.handleListThreads)
	v1.Get("/mentor/threads/:hash/history", s.requireSession, s.handleThreadHistory)
	v1.Get("/mentor/recall", s.requireSession, s.handleRecall)

	v1.Get("/stats", s.requireSession, s.handleStats)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		"listen", listener.Addr().String(),
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
