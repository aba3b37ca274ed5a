package controller

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

// newAuthedApp wires the locals the auth middleware would normally set.
func newAuthedApp(userID uuid.UUID, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("role", role)
		return c.Next()
	})
	return app
}

func TestSubmit_ResubmitDisallowedConflict(t *testing.T) {
	db, mock := newMockDB(t)
	studentID := uuid.New()
	assignmentID := uuid.New()
	courseID := uuid.New()

	app := newAuthedApp(studentID, "student")
	ctrl := &SubmissionController{DB: db, Validator: validator.New()}
	app.Post("/submissions", ctrl.Submit)

	mock.ExpectQuery(`SELECT (.+) FROM "assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"assignment_id", "assignment_course_id", "assignment_due_date",
			"assignment_submission_type", "assignment_allow_resubmission",
			"assignment_is_published", "assignment_max_file_size_bytes",
		}).AddRow(assignmentID.String(), courseID.String(), time.Now().Add(24*time.Hour),
			"text", false, true, int64(10485760)))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "enrollments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM "submissions"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"submission_id", "submission_assignment_id", "submission_student_id",
			"submission_status", "submission_version",
		}).AddRow(uuid.New().String(), assignmentID.String(), studentID.String(), "submitted", 1))

	req := httptest.NewRequest(fiber.MethodPost, "/submissions",
		strings.NewReader(`{"assignment_id":"`+assignmentID.String()+`","submission_text":"answer"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	// no INSERT or UPDATE was expected, so the original row stayed intact
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_GradedSubmissionIsImmutable(t *testing.T) {
	db, mock := newMockDB(t)
	studentID := uuid.New()
	assignmentID := uuid.New()
	courseID := uuid.New()

	app := newAuthedApp(studentID, "student")
	ctrl := &SubmissionController{DB: db, Validator: validator.New()}
	app.Post("/submissions", ctrl.Submit)

	mock.ExpectQuery(`SELECT (.+) FROM "assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"assignment_id", "assignment_course_id", "assignment_due_date",
			"assignment_submission_type", "assignment_allow_resubmission",
			"assignment_is_published", "assignment_max_file_size_bytes",
		}).AddRow(assignmentID.String(), courseID.String(), time.Now().Add(24*time.Hour),
			"text", true, true, int64(10485760)))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "enrollments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM "submissions"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"submission_id", "submission_assignment_id", "submission_student_id",
			"submission_status", "submission_version",
		}).AddRow(uuid.New().String(), assignmentID.String(), studentID.String(), "graded", 2))

	req := httptest.NewRequest(fiber.MethodPost, "/submissions",
		strings.NewReader(`{"assignment_id":"`+assignmentID.String()+`","submission_text":"second try"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A text assignment without a text answer must stop at the shape check with
// 422 and never reach the submission lookup or an insert.
func TestSubmit_MissingTextRejectedBeforeAnyWrite(t *testing.T) {
	db, mock := newMockDB(t)
	studentID := uuid.New()
	assignmentID := uuid.New()
	courseID := uuid.New()

	app := newAuthedApp(studentID, "student")
	ctrl := &SubmissionController{DB: db, Validator: validator.New()}
	app.Post("/submissions", ctrl.Submit)

	mock.ExpectQuery(`SELECT (.+) FROM "assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"assignment_id", "assignment_course_id", "assignment_due_date",
			"assignment_submission_type", "assignment_allow_resubmission",
			"assignment_is_published", "assignment_max_file_size_bytes",
		}).AddRow(assignmentID.String(), courseID.String(), time.Now().Add(24*time.Hour),
			"text", false, true, int64(10485760)))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "enrollments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	req := httptest.NewRequest(fiber.MethodPost, "/submissions",
		strings.NewReader(`{"assignment_id":"`+assignmentID.String()+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
