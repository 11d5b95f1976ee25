package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/entry"
	"github.com/oinstituto/atlas/core/plan"
	"github.com/oinstituto/atlas/core/realtime"
)

type (
	ServerDeps struct {
		Conf      *core.Config
		Logger    core.Logger
		Entries   *entry.Service
		Plans     *plan.Service
		Drafts    *plan.DraftStore
		Documents *document.Service
		Watcher   *realtime.Watcher

		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		hub      *hub
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf.SecretKey))

	registerFormAPI(v1, s.deps.Drafts, s.deps.Plans)
	registerPlanAPI(v1, s.deps.Plans, conf.Server.PlanRateLimit)
	registerEntryAPI(v1, s.deps.Entries)
	s.hub = registerDashboardAPI(v1, s.deps.Watcher, s.deps.Logger)
	registerGalleryAPI(v1, s.deps.Documents)
	registerAdminAPI(v1, jwt, s.deps.Entries)
}

// Start blocks until the server stops. Listener errors are sent to Errors().
func (s *Server) Start() {
	addr := s.deps.Conf.Server.Address()
	s.deps.Logger.Info("API listening on " + addr)
	if err := s.app.Start(addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks main to stop the server gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

// Shutdown closes the websocket streams, then stops the listener and waits for
// outstanding requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	s.hub.closeAll()
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
