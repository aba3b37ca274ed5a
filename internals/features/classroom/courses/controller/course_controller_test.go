package controller

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

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

func courseRow(courseID, instructorID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"course_id", "course_instructor_id", "course_entry_code", "course_is_archived",
	}).AddRow(courseID.String(), instructorID.String(), "ABC234", false)
}

// A teacher who does not own the course gets 403 and nothing is written.
func TestPatch_NonOwnerForbiddenNoWrite(t *testing.T) {
	db, mock := newMockDB(t)
	teacherID := uuid.New()
	courseID := uuid.New()

	app := newAuthedApp(teacherID, "teacher")
	ctrl := &CourseController{DB: db, Validator: validator.New()}
	app.Patch("/courses/:id", ctrl.Patch)

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRow(courseID, uuid.New()))

	req := httptest.NewRequest(fiber.MethodPatch, "/courses/"+courseID.String(),
		strings.NewReader(`{"course_title":"Renamed"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatch_UnknownCourseNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	teacherID := uuid.New()

	app := newAuthedApp(teacherID, "teacher")
	ctrl := &CourseController{DB: db, Validator: validator.New()}
	app.Patch("/courses/:id", ctrl.Patch)

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}))

	req := httptest.NewRequest(fiber.MethodPatch, "/courses/"+uuid.New().String(),
		strings.NewReader(`{"course_title":"Renamed"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// When every retry hits the unique index the handler answers 409, same as
// course creation does.
func TestRegenerateEntryCode_RetriesExhaustedConflict(t *testing.T) {
	db, mock := newMockDB(t)
	teacherID := uuid.New()
	courseID := uuid.New()

	app := newAuthedApp(teacherID, "teacher")
	ctrl := &CourseController{DB: db, Validator: validator.New()}
	app.Post("/courses/:id/entry-code", ctrl.RegenerateEntryCode)

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRow(courseID, teacherID))
	for i := 0; i <= entryCodeMaxRetries; i++ {
		mock.ExpectExec(`UPDATE "courses" SET`).
			WillReturnError(errors.New(`duplicate key value violates unique constraint "uq_courses_entry_code"`))
	}

	req := httptest.NewRequest(fiber.MethodPost, "/courses/"+courseID.String()+"/entry-code", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
