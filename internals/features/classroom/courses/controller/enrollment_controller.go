package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "classku_backend/internals/features/classroom/courses/dto"
	model "classku_backend/internals/features/classroom/courses/model"
	service "classku_backend/internals/features/classroom/courses/service"
	userModel "classku_backend/internals/features/users/user/model"
	helper "classku_backend/internals/helpers"
)

type EnrollmentController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewEnrollmentController(db *gorm.DB) *EnrollmentController {
	return &EnrollmentController{
		DB:        db,
		Validator: validator.New(),
	}
}

// POST /courses/enroll (STUDENT)
// Self-enrollment by entry code. A wrong code is indistinguishable from a
// missing course on purpose, and never mutates anything.
func (ctrl *EnrollmentController) Enroll(c *fiber.Ctx) error {
	studentID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var body dto.EnrollRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	code := service.NormalizeEntryCode(body.EntryCode)

	var course model.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("course_entry_code = ? AND course_is_archived = FALSE", code).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "No course matches that entry code")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	if course.CourseInstructorID == studentID {
		return helper.JsonError(c, fiber.StatusForbidden, "Instructors cannot enroll in their own course")
	}

	enrollment := model.EnrollmentModel{
		EnrollmentCourseID:  course.CourseID,
		EnrollmentStudentID: studentID,
	}
	// the unique index on (course_id, student_id) decides the race
	if err := ctrl.DB.WithContext(c.Context()).Create(&enrollment).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Already enrolled in this course")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonCreated(c, "Enrolled", fiber.Map{
		"enrollment": dto.EnrollmentFromModel(&enrollment),
		"course":     dto.FromModel(&course, false),
	})
}

// GET /courses (STUDENT): courses the caller is enrolled in
func (ctrl *EnrollmentController) ListMine(c *fiber.Ctx) error {
	studentID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}
	paging := helper.ResolvePaging(c, 20, 200)

	base := ctrl.DB.WithContext(c.Context()).
		Model(&model.CourseModel{}).
		Joins("JOIN enrollments ON enrollment_course_id = course_id AND enrollment_deleted_at IS NULL").
		Where("enrollment_student_id = ?", studentID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var courses []model.CourseModel
	if err := base.
		Order("course_created_at DESC").
		Offset(paging.Offset).
		Limit(paging.Limit).
		Find(&courses).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", dto.FromModels(courses, false),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /:id/students (TEACHER, owner only)
func (ctrl *EnrollmentController) ListStudents(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course id")
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var course model.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).First(&course, "course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if course.CourseInstructorID != actorID {
		return helper.JsonError(c, fiber.StatusForbidden, "Only the course instructor may do this")
	}

	paging := helper.ResolvePaging(c, 50, 500)

	base := ctrl.DB.WithContext(c.Context()).
		Model(&userModel.UserModel{}).
		Joins("JOIN enrollments ON enrollment_student_id = users.id AND enrollment_deleted_at IS NULL").
		Where("enrollment_course_id = ?", courseID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	type studentRow struct {
		ID       uuid.UUID `json:"id"`
		UserName string    `json:"user_name"`
		Email    string    `json:"email"`
	}
	var students []studentRow
	if err := base.
		Select("users.id", "users.user_name", "users.email").
		Order("users.user_name ASC").
		Offset(paging.Offset).
		Limit(paging.Limit).
		Scan(&students).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonList(c, "ok", students,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// DELETE /:id/students/:student_id (TEACHER, owner only)
func (ctrl *EnrollmentController) RemoveStudent(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course id")
	}
	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid student id")
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var course model.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).First(&course, "course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if course.CourseInstructorID != actorID {
		return helper.JsonError(c, fiber.StatusForbidden, "Only the course instructor may do this")
	}

	res := ctrl.DB.WithContext(c.Context()).
		Where("enrollment_course_id = ? AND enrollment_student_id = ?", courseID, studentID).
		Delete(&model.EnrollmentModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Enrollment not found")
	}

	return helper.JsonDeleted(c, "Student removed", fiber.Map{
		"course_id":  courseID,
		"student_id": studentID,
	})
}
