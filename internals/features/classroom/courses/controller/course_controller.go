package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	assignmentModel "classku_backend/internals/features/classroom/assignments/model"
	dto "classku_backend/internals/features/classroom/courses/dto"
	model "classku_backend/internals/features/classroom/courses/model"
	service "classku_backend/internals/features/classroom/courses/service"
	submissionModel "classku_backend/internals/features/classroom/submissions/model"
	helper "classku_backend/internals/helpers"
)

const entryCodeMaxRetries = 5

type CourseController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewCourseController(db *gorm.DB) *CourseController {
	return &CourseController{
		DB:        db,
		Validator: validator.New(),
	}
}

/* =========================
   Instructor handlers
========================= */

// POST / (TEACHER)
func (ctrl *CourseController) Create(c *fiber.Ctx) error {
	instructorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var body dto.CreateCourseRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if !body.CourseEndDate.After(body.CourseStartDate) {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "course_end_date must be after course_start_date")
	}

	// entry code collides rarely; retry generation on the unique index
	var course model.CourseModel
	for attempt := 0; ; attempt++ {
		course = body.ToModel(instructorID, service.GenerateEntryCode())
		err := ctrl.DB.WithContext(c.Context()).Create(&course).Error
		if err == nil {
			break
		}
		if helper.IsDuplicateKey(err) && attempt < entryCodeMaxRetries {
			continue
		}
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Could not allocate a unique entry code, please retry")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonCreated(c, "Course created", dto.FromModel(&course, true))
}

// GET / (TEACHER): courses taught by the caller
func (ctrl *CourseController) ListMine(c *fiber.Ctx) error {
	instructorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var q dto.ListCoursesQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	paging := helper.ResolvePaging(c, 20, 200)

	base := ctrl.DB.WithContext(c.Context()).
		Model(&model.CourseModel{}).
		Where("course_instructor_id = ?", instructorID)
	base = applyCourseFilters(base, &q)

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

	return helper.JsonList(c, "ok", dto.FromModels(courses, true),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /:id
func (ctrl *CourseController) GetByID(c *fiber.Ctx) error {
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

	isInstructor := course.CourseInstructorID == actorID
	if !isInstructor {
		// students only see courses they are enrolled in
		var n int64
		if err := ctrl.DB.WithContext(c.Context()).
			Model(&model.EnrollmentModel{}).
			Where("enrollment_course_id = ? AND enrollment_student_id = ?", courseID, actorID).
			Count(&n).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		if n == 0 {
			return helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		}
	}

	return helper.JsonOK(c, "ok", dto.FromModel(&course, isInstructor))
}

// PATCH /:id (TEACHER, owner only)
func (ctrl *CourseController) Patch(c *fiber.Ctx) error {
	course, ok := ctrl.ownedCourse(c)
	if !ok {
		return nil
	}

	var body dto.UpdateCourseRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	start := course.CourseStartDate
	end := course.CourseEndDate
	if body.CourseStartDate != nil {
		start = *body.CourseStartDate
	}
	if body.CourseEndDate != nil {
		end = *body.CourseEndDate
	}
	if !end.After(start) {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "course_end_date must be after course_start_date")
	}

	upd := body.ToUpdates()
	if len(upd) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}
	if err := ctrl.DB.WithContext(c.Context()).Model(course).Updates(upd).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonUpdated(c, "Course updated", dto.FromModel(course, true))
}

// POST /:id/entry-code (TEACHER, owner only): rotate the enrollment code
func (ctrl *CourseController) RegenerateEntryCode(c *fiber.Ctx) error {
	course, ok := ctrl.ownedCourse(c)
	if !ok {
		return nil
	}

	for attempt := 0; ; attempt++ {
		code := service.GenerateEntryCode()
		err := ctrl.DB.WithContext(c.Context()).
			Model(course).
			Update("course_entry_code", code).Error
		if err == nil {
			course.CourseEntryCode = code
			break
		}
		if helper.IsDuplicateKey(err) && attempt < entryCodeMaxRetries {
			continue
		}
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Could not allocate a unique entry code, please retry")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonUpdated(c, "Entry code regenerated", fiber.Map{
		"course_id":         course.CourseID,
		"course_entry_code": course.CourseEntryCode,
	})
}

// DELETE /:id (TEACHER, owner only)
// A course owns its assignments, which own their rubrics and submissions;
// the whole subtree goes in one transaction.
func (ctrl *CourseController) Delete(c *fiber.Ctx) error {
	course, ok := ctrl.ownedCourse(c)
	if !ok {
		return nil
	}

	err := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		assignmentIDs := tx.Model(&assignmentModel.AssignmentModel{}).
			Select("assignment_id").
			Where("assignment_course_id = ?", course.CourseID)

		sectionIDs := tx.Model(&assignmentModel.RubricSectionModel{}).
			Select("rubric_section_id").
			Where("rubric_section_assignment_id IN (?)", assignmentIDs)

		if err := tx.Where("submission_file_submission_id IN (?)",
			tx.Model(&submissionModel.SubmissionModel{}).
				Select("submission_id").
				Where("submission_assignment_id IN (?)", assignmentIDs),
		).Delete(&submissionModel.SubmissionFileModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_assignment_id IN (?)", assignmentIDs).
			Delete(&submissionModel.SubmissionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("rubric_criterion_section_id IN (?)", sectionIDs).
			Delete(&assignmentModel.RubricCriterionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("rubric_section_assignment_id IN (?)", assignmentIDs).
			Delete(&assignmentModel.RubricSectionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_course_id = ?", course.CourseID).
			Delete(&assignmentModel.AssignmentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_course_id = ?", course.CourseID).
			Delete(&model.EnrollmentModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonDeleted(c, "Course deleted", fiber.Map{"course_id": course.CourseID})
}

/* =========================
   Shared bits
========================= */

// ownedCourse loads the course in :id and checks the caller is its
// instructor. On failure the error response is already written and the
// second return is false; the handler must stop and return nil.
func (ctrl *CourseController) ownedCourse(c *fiber.Ctx) (*model.CourseModel, bool) {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = helper.JsonError(c, fiber.StatusBadRequest, "Invalid course id")
		return nil, false
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		_ = helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
		return nil, false
	}

	var course model.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).First(&course, "course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		} else {
			_ = helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	if course.CourseInstructorID != actorID {
		_ = helper.JsonError(c, fiber.StatusForbidden, "Only the course instructor may do this")
		return nil, false
	}
	return &course, true
}

func applyCourseFilters(q *gorm.DB, f *dto.ListCoursesQuery) *gorm.DB {
	if f == nil {
		return q
	}
	if f.Term != nil {
		q = q.Where("course_term = ?", *f.Term)
	}
	if f.Year != nil {
		q = q.Where("course_year = ?", *f.Year)
	}
	if f.Archived != nil {
		q = q.Where("course_is_archived = ?", *f.Archived)
	}
	if f.Search != nil && *f.Search != "" {
		like := "%" + *f.Search + "%"
		q = q.Where("course_title ILIKE ? OR course_number ILIKE ?", like, like)
	}
	return q
}
