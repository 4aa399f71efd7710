package echoapi

import (
	"context"
	"net/http"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/shule/apps/api/di"
	"github.com/trezcool/shule/core"
)

type (
	Options struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Services   *di.Services
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		// Errors receives the error that stopped the server.
		Errors() <-chan error
		// ShutdownRequested is closed when a handler asked for the server to shut down.
		ShutdownRequested() <-chan struct{}
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		auth     *authenticator
		errs     chan error
		shutdown chan struct{}
		once     sync.Once
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		auth:     newAuthenticator(opts.Conf, opts.Services.User),
		errs:     make(chan error, 1),
		shutdown: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	metrics := newMetrics()
	s.app.Use(metrics.middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(metrics.handler()))

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.auth.config)
	svcs := s.opts.Services

	registerUserAPI(api, jwt, s.auth, s.opts.Validate, svcs.User, svcs.Role)
	registerSchoolAPI(api, jwt, s.auth, svcs.School)
	registerAcademicsAPI(api, jwt, svcs.Education, svcs.Sector, svcs.Trade, svcs.ClassRoomType, svcs.ClassRoom)
	registerClassAPI(api, jwt, svcs.Class, svcs.ClassGroup)
	registerSubjectAPI(api, jwt, svcs.Subject, svcs.SubjectType)
	registerFileAPI(api, jwt, svcs.File, svcs.FileType)
	registerChatAPI(api, jwt, s.auth, svcs.Conversation, svcs.Message)
	registerRequestAPI(api, jwt, s.auth, svcs.Request, svcs.RequestType)
}

func (s *server) Start() {
	go func() {
		s.errs <- s.app.Start(s.opts.Conf.Server.Host)
	}()
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownRequested() <-chan struct{} { return s.shutdown }

func (s *server) signalShutdown() {
	s.once.Do(func() { close(s.shutdown) })
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.opts.Conf.AppName+" API!")
}
