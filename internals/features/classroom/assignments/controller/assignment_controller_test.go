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

// A teacher who does not own the course gets 403 and nothing is written.
func TestPatch_NonOwnerForbiddenNoWrite(t *testing.T) {
	db, mock := newMockDB(t)
	teacherID := uuid.New()
	assignmentID := uuid.New()
	courseID := uuid.New()

	app := newAuthedApp(teacherID, "teacher")
	ctrl := &AssignmentController{DB: db, Validator: validator.New()}
	app.Patch("/assignments/:id", ctrl.Patch)

	mock.ExpectQuery(`SELECT (.+) FROM "assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"assignment_id", "assignment_course_id", "assignment_is_published",
		}).AddRow(assignmentID.String(), courseID.String(), false))
	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"course_id", "course_instructor_id",
		}).AddRow(courseID.String(), uuid.New().String()))

	req := httptest.NewRequest(fiber.MethodPatch, "/assignments/"+assignmentID.String(),
		strings.NewReader(`{"assignment_title":"Renamed"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_UnknownAssignmentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	teacherID := uuid.New()

	app := newAuthedApp(teacherID, "teacher")
	ctrl := &AssignmentController{DB: db, Validator: validator.New()}
	app.Post("/assignments/:id/publish", ctrl.Publish)

	mock.ExpectQuery(`SELECT (.+) FROM "assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id"}))

	req := httptest.NewRequest(fiber.MethodPost, "/assignments/"+uuid.New().String()+"/publish", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
