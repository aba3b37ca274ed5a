package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "classku_backend/internals/features/classroom/assignments/dto"
	model "classku_backend/internals/features/classroom/assignments/model"
	service "classku_backend/internals/features/classroom/assignments/service"
	courseModel "classku_backend/internals/features/classroom/courses/model"
	submissionModel "classku_backend/internals/features/classroom/submissions/model"
	helper "classku_backend/internals/helpers"
)

type AssignmentController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAssignmentController(db *gorm.DB) *AssignmentController {
	return &AssignmentController{
		DB:        db,
		Validator: validator.New(),
	}
}

/* =========================
   Instructor handlers
========================= */

// POST / (TEACHER)
func (ctrl *AssignmentController) Create(c *fiber.Ctx) error {
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var body dto.CreateAssignmentRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	// the owning course must exist and belong to the caller
	var course courseModel.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&course, "course_id = ?", body.AssignmentCourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if course.CourseInstructorID != actorID {
		return helper.JsonError(c, fiber.StatusForbidden, "Only the course instructor may do this")
	}

	totalPoints, err := service.ValidateRubric(body.Rubric)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	assignment := body.ToModel(totalPoints)
	txErr := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return insertRubric(tx, assignment.AssignmentID, body.Rubric)
	})
	if txErr != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, txErr.Error())
	}

	rubric, err := ctrl.loadRubric(c, assignment.AssignmentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "Assignment created", dto.FromModel(&assignment, 0, rubric))
}

// PATCH /:id (TEACHER, owner only)
func (ctrl *AssignmentController) Patch(c *fiber.Ctx) error {
	assignment, ok := ctrl.ownedAssignment(c)
	if !ok {
		return nil
	}

	var body dto.UpdateAssignmentRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	upd := body.ToUpdates()
	replacingRubric := len(body.Rubric) > 0

	if replacingRubric {
		locked, err := ctrl.rubricLocked(c, assignment)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		if locked {
			return helper.JsonError(c, fiber.StatusConflict,
				"Rubric is locked: the assignment is published or already has submissions")
		}
		totalPoints, err := service.ValidateRubric(body.Rubric)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		upd["assignment_total_points"] = totalPoints
	}

	if len(upd) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}

	txErr := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if replacingRubric {
			if err := deleteRubric(tx, assignment.AssignmentID); err != nil {
				return err
			}
			if err := insertRubric(tx, assignment.AssignmentID, body.Rubric); err != nil {
				return err
			}
		}
		return tx.Model(assignment).Updates(upd).Error
	})
	if txErr != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, txErr.Error())
	}

	rubric, err := ctrl.loadRubric(c, assignment.AssignmentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	count, _ := ctrl.submissionCount(c, assignment.AssignmentID)
	return helper.JsonUpdated(c, "Assignment updated", dto.FromModel(assignment, count, rubric))
}

// POST /:id/rubric/import (TEACHER, owner only)
// Replaces the rubric from a pasted JSON document. All-or-nothing: an invalid
// document never partially applies.
func (ctrl *AssignmentController) ImportRubric(c *fiber.Ctx) error {
	assignment, ok := ctrl.ownedAssignment(c)
	if !ok {
		return nil
	}

	var body dto.ImportRubricRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	locked, err := ctrl.rubricLocked(c, assignment)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if locked {
		return helper.JsonError(c, fiber.StatusConflict,
			"Rubric is locked: the assignment is published or already has submissions")
	}

	sections, totalPoints, err := service.ParseRubricJSON(body.Document)
	if err != nil {
		if errors.Is(err, service.ErrMalformedRubric) {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	txErr := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := deleteRubric(tx, assignment.AssignmentID); err != nil {
			return err
		}
		if err := insertRubric(tx, assignment.AssignmentID, sections); err != nil {
			return err
		}
		return tx.Model(assignment).Update("assignment_total_points", totalPoints).Error
	})
	if txErr != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, txErr.Error())
	}

	rubric, err := ctrl.loadRubric(c, assignment.AssignmentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Rubric imported", dto.FromModel(assignment, 0, rubric))
}

// POST /:id/publish (TEACHER, owner only)
func (ctrl *AssignmentController) Publish(c *fiber.Ctx) error {
	assignment, ok := ctrl.ownedAssignment(c)
	if !ok {
		return nil
	}
	if assignment.AssignmentIsPublished {
		return helper.JsonError(c, fiber.StatusConflict, "Assignment is already published")
	}

	var sections int64
	if err := ctrl.DB.WithContext(c.Context()).
		Model(&model.RubricSectionModel{}).
		Where("rubric_section_assignment_id = ?", assignment.AssignmentID).
		Count(&sections).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if sections == 0 {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Cannot publish an assignment without a rubric")
	}

	now := time.Now()
	if err := ctrl.DB.WithContext(c.Context()).Model(assignment).Updates(map[string]any{
		"assignment_is_published": true,
		"assignment_published_at": &now,
	}).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	rubric, err := ctrl.loadRubric(c, assignment.AssignmentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Assignment published", dto.FromModel(assignment, 0, rubric))
}

// DELETE /:id (TEACHER, owner only)
func (ctrl *AssignmentController) Delete(c *fiber.Ctx) error {
	assignment, ok := ctrl.ownedAssignment(c)
	if !ok {
		return nil
	}

	err := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_file_submission_id IN (?)",
			tx.Model(&submissionModel.SubmissionModel{}).
				Select("submission_id").
				Where("submission_assignment_id = ?", assignment.AssignmentID),
		).Delete(&submissionModel.SubmissionFileModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_assignment_id = ?", assignment.AssignmentID).
			Delete(&submissionModel.SubmissionModel{}).Error; err != nil {
			return err
		}
		if err := deleteRubric(tx, assignment.AssignmentID); err != nil {
			return err
		}
		return tx.Delete(assignment).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonDeleted(c, "Assignment deleted", fiber.Map{"assignment_id": assignment.AssignmentID})
}

/* =========================
   Read handlers (both roles)
========================= */

// GET /courses/:course_id/assignments
// Instructors see everything; enrolled students only what is published.
func (ctrl *AssignmentController) ListByCourse(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("course_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid course id")
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var course courseModel.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).First(&course, "course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	isInstructor := course.CourseInstructorID == actorID
	if !isInstructor {
		var n int64
		if err := ctrl.DB.WithContext(c.Context()).
			Model(&courseModel.EnrollmentModel{}).
			Where("enrollment_course_id = ? AND enrollment_student_id = ?", courseID, actorID).
			Count(&n).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		if n == 0 {
			return helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		}
	}

	paging := helper.ResolvePaging(c, 20, 200)
	base := ctrl.DB.WithContext(c.Context()).
		Model(&model.AssignmentModel{}).
		Where("assignment_course_id = ?", courseID)
	if !isInstructor {
		base = base.Where("assignment_is_published = TRUE")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var assignments []model.AssignmentModel
	if err := base.
		Order("assignment_due_date ASC").
		Offset(paging.Offset).
		Limit(paging.Limit).
		Find(&assignments).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		count, _ := ctrl.submissionCount(c, assignments[i].AssignmentID)
		out = append(out, dto.FromModel(&assignments[i], count, nil))
	}
	return helper.JsonList(c, "ok", out,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /:id: detail with the full rubric tree
func (ctrl *AssignmentController) GetByID(c *fiber.Ctx) error {
	assignmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var assignment model.AssignmentModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&assignment, "assignment_id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Assignment not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var course courseModel.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&course, "course_id = ?", assignment.AssignmentCourseID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	if course.CourseInstructorID != actorID {
		var n int64
		if err := ctrl.DB.WithContext(c.Context()).
			Model(&courseModel.EnrollmentModel{}).
			Where("enrollment_course_id = ? AND enrollment_student_id = ?", course.CourseID, actorID).
			Count(&n).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		if n == 0 || !assignment.AssignmentIsPublished {
			return helper.JsonError(c, fiber.StatusNotFound, "Assignment not found")
		}
	}

	rubric, err := ctrl.loadRubric(c, assignment.AssignmentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	count, _ := ctrl.submissionCount(c, assignment.AssignmentID)
	return helper.JsonOK(c, "ok", dto.FromModel(&assignment, count, rubric))
}

/* =========================
   Shared bits
========================= */

// ownedAssignment loads the assignment in :id and checks the caller owns its
// course. On failure the error response is already written and the second
// return is false; the handler must stop and return nil.
func (ctrl *AssignmentController) ownedAssignment(c *fiber.Ctx) (*model.AssignmentModel, bool) {
	assignmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
		return nil, false
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		_ = helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
		return nil, false
	}

	var assignment model.AssignmentModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&assignment, "assignment_id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = helper.JsonError(c, fiber.StatusNotFound, "Assignment not found")
		} else {
			_ = helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		return nil, false
	}

	var course courseModel.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&course, "course_id = ?", assignment.AssignmentCourseID).Error; err != nil {
		_ = helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		return nil, false
	}
	if course.CourseInstructorID != actorID {
		_ = helper.JsonError(c, fiber.StatusForbidden, "Only the course instructor may do this")
		return nil, false
	}
	return &assignment, true
}

// rubricLocked: the rubric is immutable once published or once any
// submission exists.
func (ctrl *AssignmentController) rubricLocked(c *fiber.Ctx, a *model.AssignmentModel) (bool, error) {
	if a.AssignmentIsPublished {
		return true, nil
	}
	count, err := ctrl.submissionCount(c, a.AssignmentID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// submissionCount is always derived from the submissions table, never stored.
func (ctrl *AssignmentController) submissionCount(c *fiber.Ctx, assignmentID uuid.UUID) (int64, error) {
	var n int64
	err := ctrl.DB.WithContext(c.Context()).
		Model(&submissionModel.SubmissionModel{}).
		Where("submission_assignment_id = ?", assignmentID).
		Count(&n).Error
	return n, err
}

func (ctrl *AssignmentController) loadRubric(c *fiber.Ctx, assignmentID uuid.UUID) ([]dto.RubricSectionResponse, error) {
	var sections []model.RubricSectionModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("rubric_section_assignment_id = ?", assignmentID).
		Order("rubric_section_position ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, nil
	}

	sectionIDs := make([]uuid.UUID, 0, len(sections))
	for _, s := range sections {
		sectionIDs = append(sectionIDs, s.RubricSectionID)
	}

	var criteria []model.RubricCriterionModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("rubric_criterion_section_id IN ?", sectionIDs).
		Order("rubric_criterion_position ASC").
		Find(&criteria).Error; err != nil {
		return nil, err
	}
	return dto.RubricResponseFromModels(sections, criteria), nil
}

func insertRubric(tx *gorm.DB, assignmentID uuid.UUID, sections []service.RubricSection) error {
	for i, sec := range sections {
		row := model.RubricSectionModel{
			RubricSectionAssignmentID: assignmentID,
			RubricSectionPosition:     i,
			RubricSectionTitle:        sec.Title,
			RubricSectionPoints:       sec.Points,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for j, cr := range sec.Criteria {
			crRow := model.RubricCriterionModel{
				RubricCriterionSectionID:   row.RubricSectionID,
				RubricCriterionPosition:    j,
				RubricCriterionDescription: cr.Description,
				RubricCriterionPoints:      cr.Points,
			}
			if err := tx.Create(&crRow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func deleteRubric(tx *gorm.DB, assignmentID uuid.UUID) error {
	if err := tx.Where("rubric_criterion_section_id IN (?)",
		tx.Model(&model.RubricSectionModel{}).
			Select("rubric_section_id").
			Where("rubric_section_assignment_id = ?", assignmentID),
	).Delete(&model.RubricCriterionModel{}).Error; err != nil {
		return err
	}
	return tx.Where("rubric_section_assignment_id = ?", assignmentID).
		Delete(&model.RubricSectionModel{}).Error
}
