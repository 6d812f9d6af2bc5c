package tests

import (
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/amss/apps/api/echo"
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
	inmemdb "github.com/trezcool/amss/storage/database/inmem"
	testutil "github.com/trezcool/amss/tests"
)

var (
	conf *core.Config
	app  Server

	db             = inmemdb.NewDB()
	usrRepo        = inmemdb.NewUserRepository(db)
	stdRepo        = inmemdb.NewStudentRepository(db)
	tchRepo        = inmemdb.NewTeacherRepository(db)
	schoolRepo     = inmemdb.NewSchoolRepository(db)
	gradeRepo      = inmemdb.NewGradeRepository(db)
	attendanceRepo = inmemdb.NewAttendanceRepository(db)
	resultRepo     = inmemdb.NewResultRepository(db)
	activityRepo   = inmemdb.NewActivityRepository(db)
	announceRepo   = inmemdb.NewAnnounceRepository(db)
	auditRepo      = inmemdb.NewAuditRepository(db)

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	aiClient := aisvc.NewDummyClient("generated text")
	logger := testutil.NopLogger{}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	auditSvc := audit.NewService(auditRepo, logger)
	usrSvc := user.NewService(db, usrRepo, mailSvc, conf)
	schoolSvc := school.NewService(db, schoolRepo)
	teacherSvc := teacher.NewService(db, tchRepo, usrRepo, auditSvc, mailSvc, conf)
	studentSvc := student.NewService(db, stdRepo, usrRepo, schoolRepo, gradeRepo, auditSvc, mailSvc, conf)
	announceSvc := announce.NewService(db, announceRepo, usrRepo, validate)
	gradeSvc := grade.NewService(db, gradeRepo, schoolRepo, tchRepo, stdRepo, auditSvc, announceSvc)
	attendanceSvc := attendance.NewService(db, attendanceRepo)
	resultSvc := result.NewService(db, resultRepo, stdRepo, gradeRepo)
	activitySvc := activity.NewService(db, activityRepo, teacherSvc, stdRepo, announceSvc, validate)
	advisorSvc := advisor.NewService(aiClient)

	// set up server
	app = NewServer(
		"",  /* addr */
		nil, /* shutdown */
		&Deps{
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
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
