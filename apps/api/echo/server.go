package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/activity"
	"github.com/trezcool/amss/core/advisor"
	"github.com/trezcool/amss/core/announce"
	"github.com/trezcool/amss/core/attendance"
	"github.com/trezcool/amss/core/audit"
	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/result"
	"github.com/trezcool/amss/core/school"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/teacher"
	"github.com/trezcool/amss/core/user"
)

type (
	// Deps regroups everything the API server needs to run.
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc       *user.Service
		StudentSvc    *student.Service
		TeacherSvc    *teacher.Service
		SchoolSvc     *school.Service
		GradeSvc      *grade.Service
		AttendanceSvc *attendance.Service
		ResultSvc     *result.Service
		ActivitySvc   *activity.Service
		AnnounceSvc   *announce.Service
		AdvisorSvc    *advisor.Service
		AuditSvc      *audit.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		addr     string
		deps     *Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, shutdown chan os.Signal, deps *Deps) Server {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
	}
	s := &server{
		addr:     addr,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	auth := newAuthHelper(conf, s.deps.UserSvc)
	jwt := middleware.JWTWithConfig(auth.jwtConfig())

	registerUserAPI(v1, jwt, auth, s.deps)
	registerSchoolAPI(v1, jwt, auth, s.deps)
	registerStudentAPI(v1, jwt, auth, s.deps)
	registerTeacherAPI(v1, jwt, auth, s.deps)
	registerGradeAPI(v1, jwt, auth, s.deps)
	registerAttendanceAPI(v1, jwt, auth, s.deps)
	registerResultAPI(v1, jwt, auth, s.deps)
	registerActivityAPI(v1, jwt, auth, s.deps)
	registerAnnounceAPI(v1, jwt, auth, s.deps)
	registerAdvisorAPI(v1, jwt, auth, s.deps)
	registerReportAPI(v1, jwt, auth, s.deps)
	registerAuditAPI(v1, jwt, auth, s.deps)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// signalShutdown is called by the error handler on unrecoverable errors.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to AMSS API!")
}
