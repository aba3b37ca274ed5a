package controller

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gradingFixture struct {
	teacherID    uuid.UUID
	submissionID uuid.UUID
	assignmentID uuid.UUID
	courseID     uuid.UUID
	criterionID  uuid.UUID
}

func newGradingFixture() gradingFixture {
	return gradingFixture{
		teacherID:    uuid.New(),
		submissionID: uuid.New(),
		assignmentID: uuid.New(),
		courseID:     uuid.New(),
		criterionID:  uuid.New(),
	}
}

// expectOwnedSubmission mocks the submission, assignment and course lookups
// that every grading handler starts with.
func expectOwnedSubmission(mock sqlmock.Sqlmock, fx gradingFixture, instructorID uuid.UUID, status string, version int) {
	mock.ExpectQuery(`SELECT (.+) FROM "submissions"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"submission_id", "submission_assignment_id", "submission_student_id",
			"submission_status", "submission_version",
		}).AddRow(fx.submissionID.String(), fx.assignmentID.String(), uuid.New().String(), status, version))
	mock.ExpectQuery(`SELECT (.+) FROM "assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"assignment_id", "assignment_course_id", "assignment_is_published",
		}).AddRow(fx.assignmentID.String(), fx.courseID.String(), true))
	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"course_id", "course_instructor_id",
		}).AddRow(fx.courseID.String(), instructorID.String()))
}

func TestGrade_StaleVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	fx := newGradingFixture()

	app := newAuthedApp(fx.teacherID, "teacher")
	ctrl := &GradingController{DB: db, Validator: validator.New()}
	app.Post("/submissions/:id/grade", ctrl.Grade)

	expectOwnedSubmission(mock, fx, fx.teacherID, "submitted", 2)
	mock.ExpectQuery(`SELECT (.+) FROM "rubric_criteria"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"rubric_criterion_id", "rubric_criterion_points",
		}).AddRow(fx.criterionID.String(), 10.0))
	// grader read version 1 but the row is at 2, so the guarded write misses
	mock.ExpectExec(`UPDATE "submissions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(fiber.MethodPost, "/submissions/"+fx.submissionID.String()+"/grade",
		strings.NewReader(`{"scores":{"`+fx.criterionID.String()+`":5},"version":1}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A teacher who does not own the course gets 403 before any write happens.
func TestGrade_NonOwnerForbiddenNoWrite(t *testing.T) {
	db, mock := newMockDB(t)
	fx := newGradingFixture()

	app := newAuthedApp(fx.teacherID, "teacher")
	ctrl := &GradingController{DB: db, Validator: validator.New()}
	app.Post("/submissions/:id/grade", ctrl.Grade)

	expectOwnedSubmission(mock, fx, uuid.New(), "submitted", 1)

	req := httptest.NewRequest(fiber.MethodPost, "/submissions/"+fx.submissionID.String()+"/grade",
		strings.NewReader(`{"scores":{"`+fx.criterionID.String()+`":5},"version":1}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturn_NonOwnerForbiddenNoWrite(t *testing.T) {
	db, mock := newMockDB(t)
	fx := newGradingFixture()

	app := newAuthedApp(fx.teacherID, "teacher")
	ctrl := &GradingController{DB: db, Validator: validator.New()}
	app.Post("/submissions/:id/return", ctrl.Return)

	expectOwnedSubmission(mock, fx, uuid.New(), "graded", 2)

	req := httptest.NewRequest(fiber.MethodPost, "/submissions/"+fx.submissionID.String()+"/return", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_UnknownSubmissionNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	fx := newGradingFixture()

	app := newAuthedApp(fx.teacherID, "teacher")
	ctrl := &GradingController{DB: db, Validator: validator.New()}
	app.Get("/submissions/:id", ctrl.GetByID)

	mock.ExpectQuery(`SELECT (.+) FROM "submissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"submission_id"}))

	req := httptest.NewRequest(fiber.MethodGet, "/submissions/"+uuid.New().String(), nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
