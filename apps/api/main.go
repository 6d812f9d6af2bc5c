package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/amss/apps/api/echo"
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
	aisvc "github.com/trezcool/amss/services/ai"
	emailsvc "github.com/trezcool/amss/services/email"
	logsvc "github.com/trezcool/amss/services/logger"
	"github.com/trezcool/amss/storage/database"
	sqlxrepos "github.com/trezcool/amss/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up repositories
	userRepo := sqlxrepos.NewUserRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)
	teacherRepo := sqlxrepos.NewTeacherRepository(db)
	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	gradeRepo := sqlxrepos.NewGradeRepository(db)
	attendanceRepo := sqlxrepos.NewAttendanceRepository(db)
	resultRepo := sqlxrepos.NewResultRepository(db)
	activityRepo := sqlxrepos.NewActivityRepository(db)
	announceRepo := sqlxrepos.NewAnnounceRepository(db)
	auditRepo := sqlxrepos.NewAuditRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	var aiClient advisor.Client
	if conf.GoogleAIAPIKey != "" {
		client, cleanup, aerr := aisvc.NewGeminiClient(context.Background(), conf)
		if aerr != nil {
			logger.Fatal(fmt.Sprintf("setting up AI client: %v", aerr), aerr)
		}
		defer cleanup()
		aiClient = client
	} else {
		aiClient = aisvc.NewDummyClient("AI advisor is not configured.")
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	auditSvc := audit.NewService(auditRepo, logger)
	usrSvc := user.NewService(db, userRepo, mailSvc, conf)
	schoolSvc := school.NewService(db, schoolRepo)
	teacherSvc := teacher.NewService(db, teacherRepo, userRepo, auditSvc, mailSvc, conf)
	studentSvc := student.NewService(db, studentRepo, userRepo, schoolRepo, gradeRepo, auditSvc, mailSvc, conf)
	announceSvc := announce.NewService(db, announceRepo, userRepo, validate)
	gradeSvc := grade.NewService(db, gradeRepo, schoolRepo, teacherRepo, studentRepo, auditSvc, announceSvc)
	attendanceSvc := attendance.NewService(db, attendanceRepo)
	resultSvc := result.NewService(db, resultRepo, studentRepo, gradeRepo)
	activitySvc := activity.NewService(db, activityRepo, teacherSvc, studentRepo, announceSvc, validate)
	advisorSvc := advisor.NewService(aiClient)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(conf.Server.Addr, nil, &echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,

		UserSvc:       usrSvc,
		StudentSvc:    studentSvc,
		TeacherSvc:    teacherSvc,
		SchoolSvc:     schoolSvc,
		GradeSvc:      gradeSvc,
		AttendanceSvc: attendanceSvc,
		ResultSvc:     resultSvc,
		ActivitySvc:   activitySvc,
		AnnounceSvc:   announceSvc,
		AdvisorSvc:    advisorSvc,
		AuditSvc:      auditSvc,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*database.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
