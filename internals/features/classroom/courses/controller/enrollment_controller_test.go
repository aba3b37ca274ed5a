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

// A code that matches no live course answers 404 and writes nothing.
func TestEnroll_WrongEntryCodeNotFoundNoWrite(t *testing.T) {
	db, mock := newMockDB(t)
	studentID := uuid.New()

	app := newAuthedApp(studentID, "student")
	ctrl := &EnrollmentController{DB: db, Validator: validator.New()}
	app.Post("/courses/enroll", ctrl.Enroll)

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}))

	req := httptest.NewRequest(fiber.MethodPost, "/courses/enroll",
		strings.NewReader(`{"entry_code":"ZZZZZZ"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnroll_OwnCourseForbidden(t *testing.T) {
	db, mock := newMockDB(t)
	instructorID := uuid.New()
	courseID := uuid.New()

	app := newAuthedApp(instructorID, "teacher")
	ctrl := &EnrollmentController{DB: db, Validator: validator.New()}
	app.Post("/courses/enroll", ctrl.Enroll)

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRow(courseID, instructorID))

	req := httptest.NewRequest(fiber.MethodPost, "/courses/enroll",
		strings.NewReader(`{"entry_code":"ABC234"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
