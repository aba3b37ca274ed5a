package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	assignmentModel "classku_backend/internals/features/classroom/assignments/model"
	courseModel "classku_backend/internals/features/classroom/courses/model"
	dto "classku_backend/internals/features/classroom/submissions/dto"
	model "classku_backend/internals/features/classroom/submissions/model"
	service "classku_backend/internals/features/classroom/submissions/service"
	helper "classku_backend/internals/helpers"
)

type GradingController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewGradingController(db *gorm.DB) *GradingController {
	return &GradingController{
		DB:        db,
		Validator: validator.New(),
	}
}

/* =========================
   Read handlers
========================= */

// GET /assignments/:assignment_id/submissions (TEACHER, owner only)
func (ctrl *GradingController) ListByAssignment(c *fiber.Ctx) error {
	assignmentID, err := uuid.Parse(c.Params("assignment_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var assignment assignmentModel.AssignmentModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&assignment, "assignment_id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Assignment not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if !ctrl.requireCourseOwner(c, assignment.AssignmentCourseID, actorID) {
		return nil
	}

	paging := helper.ResolvePaging(c, 20, 200)
	base := ctrl.DB.WithContext(c.Context()).
		Model(&model.SubmissionModel{}).
		Where("submission_assignment_id = ?", assignmentID)
	if status := c.Query("status"); status != "" {
		base = base.Where("submission_status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.SubmissionModel
	if err := base.
		Order("submission_submitted_at ASC").
		Offset(paging.Offset).
		Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.SubmissionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i], nil))
	}
	return helper.JsonList(c, "ok", out,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /submissions/:id (TEACHER, owner only)
func (ctrl *GradingController) GetByID(c *fiber.Ctx) error {
	row, _, ok := ctrl.ownedSubmission(c)
	if !ok {
		return nil
	}

	var files []model.SubmissionFileModel
	if err := ctrl.DB.WithContext(c.Context()).
		Where("submission_file_submission_id = ?", row.SubmissionID).
		Order("submission_file_created_at ASC").
		Find(&files).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromModel(row, files))
}

/* =========================
   Grading handlers
========================= */

// POST /submissions/:id/grade (TEACHER, owner only)
// Grading and regrading share this handler; the lifecycle service decides
// which statuses admit it.
func (ctrl *GradingController) Grade(c *fiber.Ctx) error {
	row, assignment, ok := ctrl.ownedSubmission(c)
	if !ok {
		return nil
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var body dto.GradeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	newStatus, err := service.Transition(row.SubmissionStatus, model.SubmissionStatusGraded)
	if err != nil {
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	}

	criteria, err := ctrl.rubricCriteria(c, assignment.AssignmentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	grade, err := service.AggregateScores(criteria, body.Scores)
	if err != nil {
		var scoreErr *service.ScoreError
		if errors.As(err, &scoreErr) {
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	breakdown := make(datatypes.JSONMap, len(body.Scores))
	for id, score := range body.Scores {
		breakdown[id.String()] = score
	}

	now := time.Now()
	// optimistic write: a concurrent grader who read the same version loses
	res := ctrl.DB.WithContext(c.Context()).
		Model(&model.SubmissionModel{}).
		Where("submission_id = ? AND submission_version = ?", row.SubmissionID, body.Version).
		Updates(map[string]any{
			"submission_status":           newStatus,
			"submission_grade":            grade,
			"submission_scores_breakdown": breakdown,
			"submission_feedback":         body.Feedback,
			"submission_graded_by":        actorID,
			"submission_graded_at":        now,
			"submission_version":          gorm.Expr("submission_version + 1"),
		})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusConflict,
			"Submission changed since it was read; reload and grade again")
	}

	var fresh model.SubmissionModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&fresh, "submission_id = ?", row.SubmissionID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Submission graded", dto.FromModel(&fresh, nil))
}

// POST /submissions/:id/return (TEACHER, owner only)
func (ctrl *GradingController) Return(c *fiber.Ctx) error {
	row, _, ok := ctrl.ownedSubmission(c)
	if !ok {
		return nil
	}

	newStatus, err := service.Transition(row.SubmissionStatus, model.SubmissionStatusReturned)
	if err != nil {
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	}

	now := time.Now()
	if err := ctrl.DB.WithContext(c.Context()).Model(row).Updates(map[string]any{
		"submission_status":      newStatus,
		"submission_returned_at": now,
	}).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Submission returned to student", dto.FromModel(row, nil))
}

// PUT /submissions/:id/plagiarism (TEACHER, owner only)
func (ctrl *GradingController) SetPlagiarismScore(c *fiber.Ctx) error {
	row, _, ok := ctrl.ownedSubmission(c)
	if !ok {
		return nil
	}

	var body dto.PlagiarismRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if err := ctrl.DB.WithContext(c.Context()).Model(row).
		Update("submission_plagiarism_score", body.Score).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Plagiarism score recorded", dto.FromModel(row, nil))
}

/* =========================
   Shared bits
========================= */

// ownedSubmission loads the submission in :id plus its assignment and checks
// the caller owns the course. On failure the error response is already
// written and the last return is false; the handler must stop and return nil.
func (ctrl *GradingController) ownedSubmission(c *fiber.Ctx) (*model.SubmissionModel, *assignmentModel.AssignmentModel, bool) {
	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = helper.JsonError(c, fiber.StatusBadRequest, "Invalid submission id")
		return nil, nil, false
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		_ = helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
		return nil, nil, false
	}

	var row model.SubmissionModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&row, "submission_id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = helper.JsonError(c, fiber.StatusNotFound, "Submission not found")
		} else {
			_ = helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
		return nil, nil, false
	}

	var assignment assignmentModel.AssignmentModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&assignment, "assignment_id = ?", row.SubmissionAssignmentID).Error; err != nil {
		_ = helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	if !ctrl.requireCourseOwner(c, assignment.AssignmentCourseID, actorID) {
		return nil, nil, false
	}
	return &row, &assignment, true
}

// requireCourseOwner reports whether actorID teaches courseID; when it does
// not, the error response is already written.
func (ctrl *GradingController) requireCourseOwner(c *fiber.Ctx, courseID, actorID uuid.UUID) bool {
	var course courseModel.CourseModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&course, "course_id = ?", courseID).Error; err != nil {
		_ = helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		return false
	}
	if course.CourseInstructorID != actorID {
		_ = helper.JsonError(c, fiber.StatusForbidden, "Only the course instructor may do this")
		return false
	}
	return true
}

func (ctrl *GradingController) rubricCriteria(c *fiber.Ctx, assignmentID uuid.UUID) ([]service.GradableCriterion, error) {
	var rows []assignmentModel.RubricCriterionModel
	if err := ctrl.DB.WithContext(c.Context()).
		Joins("JOIN rubric_sections ON rubric_sections.rubric_section_id = rubric_criteria.rubric_criterion_section_id").
		Where("rubric_sections.rubric_section_assignment_id = ?", assignmentID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]service.GradableCriterion, 0, len(rows))
	for _, r := range rows {
		out = append(out, service.GradableCriterion{
			ID:     r.RubricCriterionID,
			Points: r.RubricCriterionPoints,
		})
	}
	return out, nil
}
