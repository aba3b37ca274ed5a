package controller

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	assignmentModel "classku_backend/internals/features/classroom/assignments/model"
	courseModel "classku_backend/internals/features/classroom/courses/model"
	dto "classku_backend/internals/features/classroom/submissions/dto"
	model "classku_backend/internals/features/classroom/submissions/model"
	helper "classku_backend/internals/helpers"
	ossHelper "classku_backend/internals/helpers/oss"
)

type SubmissionController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	OSS       *ossHelper.OSSService
}

func NewSubmissionController(db *gorm.DB) *SubmissionController {
	svc, err := ossHelper.NewOSSServiceFromEnv("submissions")
	if err != nil {
		// file uploads degrade gracefully; text submissions keep working
		log.Printf("[WARN] OSS unavailable, submission file upload disabled: %v", err)
	}
	return &SubmissionController{
		DB:        db,
		Validator: validator.New(),
		OSS:       svc,
	}
}

/* =========================
   Student handlers
========================= */

// POST / (STUDENT): JSON or multipart (file field "file")
func (ctrl *SubmissionController) Submit(c *fiber.Ctx) error {
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var body dto.SubmitRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	var assignment assignmentModel.AssignmentModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&assignment, "assignment_id = ?", body.AssignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Assignment not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if !assignment.AssignmentIsPublished {
		return helper.JsonError(c, fiber.StatusNotFound, "Assignment not found")
	}

	var enrolled int64
	if err := ctrl.DB.WithContext(c.Context()).
		Model(&courseModel.EnrollmentModel{}).
		Where("enrollment_course_id = ? AND enrollment_student_id = ?", assignment.AssignmentCourseID, actorID).
		Count(&enrolled).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if enrolled == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Assignment not found")
	}

	fh, _ := c.FormFile("file")
	if !validatePayloadShape(c, &assignment, body.SubmissionText, fh) {
		return nil
	}
	if fh != nil && ctrl.OSS == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "File storage is not configured")
	}

	now := time.Now()
	isLate := now.After(assignment.AssignmentDueDate)

	// resubmission path: one live row per (assignment, student)
	var existing model.SubmissionModel
	findErr := ctrl.DB.WithContext(c.Context()).
		First(&existing, "submission_assignment_id = ? AND submission_student_id = ?",
			assignment.AssignmentID, actorID).Error

	switch {
	case findErr == nil:
		if existing.SubmissionStatus != model.SubmissionStatusSubmitted {
			return helper.JsonError(c, fiber.StatusConflict, "Submission has already been graded")
		}
		if !assignment.AssignmentAllowResubmission {
			return helper.JsonError(c, fiber.StatusConflict, "Assignment has already been submitted")
		}
		return ctrl.replaceSubmission(c, &assignment, &existing, body.SubmissionText, fh, now, isLate)
	case errors.Is(findErr, gorm.ErrRecordNotFound):
		return ctrl.createSubmission(c, &assignment, actorID, body.SubmissionText, fh, now, isLate)
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, findErr.Error())
	}
}

// GET / (STUDENT): the caller's own submissions
func (ctrl *SubmissionController) ListMine(c *fiber.Ctx) error {
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	paging := helper.ResolvePaging(c, 20, 200)
	base := ctrl.DB.WithContext(c.Context()).
		Model(&model.SubmissionModel{}).
		Where("submission_student_id = ?", actorID)
	if raw := c.Query("assignment_id"); raw != "" {
		assignmentID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
		}
		base = base.Where("submission_assignment_id = ?", assignmentID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.SubmissionModel
	if err := base.
		Order("submission_submitted_at DESC").
		Offset(paging.Offset).
		Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	out := make([]dto.SubmissionResponse, 0, len(rows))
	for i := range rows {
		files, _ := ctrl.loadFiles(c, rows[i].SubmissionID)
		out = append(out, dto.FromModel(&rows[i], files))
	}
	return helper.JsonList(c, "ok", out,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /:id (STUDENT): own submission only
func (ctrl *SubmissionController) GetByID(c *fiber.Ctx) error {
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}
	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid submission id")
	}

	var row model.SubmissionModel
	if err := ctrl.DB.WithContext(c.Context()).
		First(&row, "submission_id = ? AND submission_student_id = ?", submissionID, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Submission not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	files, err := ctrl.loadFiles(c, row.SubmissionID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromModel(&row, files))
}

/* =========================
   Submit internals
========================= */

func (ctrl *SubmissionController) createSubmission(
	c *fiber.Ctx,
	assignment *assignmentModel.AssignmentModel,
	studentID uuid.UUID,
	text *string,
	fh *multipart.FileHeader,
	now time.Time,
	isLate bool,
) error {
	var objectKey, contentType string
	if fh != nil {
		var err error
		// blob first, metadata second; a failed transaction deletes the blob
		objectKey, contentType, err = ctrl.OSS.UploadFromFormFile(c.UserContext(), assignment.AssignmentID.String(), fh)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	row := model.SubmissionModel{
		SubmissionAssignmentID: assignment.AssignmentID,
		SubmissionStudentID:    studentID,
		SubmissionStatus:       model.SubmissionStatusSubmitted,
		SubmissionText:         text,
		SubmissionSubmittedAt:  now,
		SubmissionIsLate:       isLate,
		SubmissionVersion:      1,
	}
	txErr := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if fh != nil {
			fileRow := model.SubmissionFileModel{
				SubmissionFileSubmissionID: row.SubmissionID,
				SubmissionFileName:         filepath.Base(fh.Filename),
				SubmissionFileObjectKey:    objectKey,
				SubmissionFileURL:          ctrl.OSS.PublicURL(objectKey),
				SubmissionFileSizeBytes:    fh.Size,
				SubmissionFileContentType:  contentType,
			}
			return tx.Create(&fileRow).Error
		}
		return nil
	})
	if txErr != nil {
		if objectKey != "" {
			_ = ctrl.OSS.DeleteObject(c.UserContext(), objectKey)
		}
		if helper.IsDuplicateKey(txErr) {
			// a concurrent submit won the unique-index race
			return helper.JsonError(c, fiber.StatusConflict, "Assignment has already been submitted")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, txErr.Error())
	}

	files, _ := ctrl.loadFiles(c, row.SubmissionID)
	return helper.JsonCreated(c, "Submission received", dto.FromModel(&row, files))
}

func (ctrl *SubmissionController) replaceSubmission(
	c *fiber.Ctx,
	assignment *assignmentModel.AssignmentModel,
	existing *model.SubmissionModel,
	text *string,
	fh *multipart.FileHeader,
	now time.Time,
	isLate bool,
) error {
	var objectKey, contentType string
	if fh != nil {
		var err error
		objectKey, contentType, err = ctrl.OSS.UploadFromFormFile(c.UserContext(), assignment.AssignmentID.String(), fh)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	var staleKeys []string
	txErr := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		var oldFiles []model.SubmissionFileModel
		if err := tx.Where("submission_file_submission_id = ?", existing.SubmissionID).
			Find(&oldFiles).Error; err != nil {
			return err
		}
		for _, f := range oldFiles {
			staleKeys = append(staleKeys, f.SubmissionFileObjectKey)
		}
		if err := tx.Where("submission_file_submission_id = ?", existing.SubmissionID).
			Delete(&model.SubmissionFileModel{}).Error; err != nil {
			return err
		}

		if err := tx.Model(existing).Updates(map[string]any{
			"submission_text":         text,
			"submission_submitted_at": now,
			"submission_is_late":      isLate,
		}).Error; err != nil {
			return err
		}

		if fh != nil {
			fileRow := model.SubmissionFileModel{
				SubmissionFileSubmissionID: existing.SubmissionID,
				SubmissionFileName:         filepath.Base(fh.Filename),
				SubmissionFileObjectKey:    objectKey,
				SubmissionFileURL:          ctrl.OSS.PublicURL(objectKey),
				SubmissionFileSizeBytes:    fh.Size,
				SubmissionFileContentType:  contentType,
			}
			return tx.Create(&fileRow).Error
		}
		return nil
	})
	if txErr != nil {
		if objectKey != "" {
			_ = ctrl.OSS.DeleteObject(c.UserContext(), objectKey)
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, txErr.Error())
	}

	// old blobs only after the transaction committed
	for _, key := range staleKeys {
		if err := ctrl.OSS.DeleteObject(c.UserContext(), key); err != nil {
			log.Printf("[CLEANUP] failed to delete stale submission blob %s: %v", key, err)
		}
	}

	files, _ := ctrl.loadFiles(c, existing.SubmissionID)
	return helper.JsonUpdated(c, "Submission replaced", dto.FromModel(existing, files))
}

// validatePayloadShape enforces the assignment's submission type plus the
// per-assignment file constraints. When it returns false the error response
// is already written and the handler must stop and return nil.
func validatePayloadShape(
	c *fiber.Ctx,
	assignment *assignmentModel.AssignmentModel,
	text *string,
	fh *multipart.FileHeader,
) bool {
	hasText := text != nil && strings.TrimSpace(*text) != ""

	switch assignment.AssignmentSubmissionType {
	case assignmentModel.SubmissionTypeText:
		if !hasText {
			_ = helper.JsonError(c, fiber.StatusUnprocessableEntity, "This assignment requires a text answer")
			return false
		}
		if fh != nil {
			_ = helper.JsonError(c, fiber.StatusUnprocessableEntity, "This assignment does not accept file uploads")
			return false
		}
	case assignmentModel.SubmissionTypeFile:
		if fh == nil {
			_ = helper.JsonError(c, fiber.StatusUnprocessableEntity, "This assignment requires a file upload")
			return false
		}
	case assignmentModel.SubmissionTypeBoth:
		if !hasText && fh == nil {
			_ = helper.JsonError(c, fiber.StatusUnprocessableEntity, "Provide a text answer, a file, or both")
			return false
		}
	}

	if fh == nil {
		return true
	}
	if fh.Size > assignment.AssignmentMaxFileSizeBytes {
		_ = helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "File exceeds the assignment's size limit")
		return false
	}
	if len(assignment.AssignmentAllowedExtensions) > 0 {
		var allowed []string
		if err := json.Unmarshal(assignment.AssignmentAllowedExtensions, &allowed); err == nil && len(allowed) > 0 {
			ext := strings.ToLower(filepath.Ext(fh.Filename))
			ok := false
			for _, a := range allowed {
				if strings.ToLower(a) == ext {
					ok = true
					break
				}
			}
			if !ok {
				_ = helper.JsonError(c, fiber.StatusUnprocessableEntity, "File type is not allowed for this assignment")
				return false
			}
		}
	}
	return true
}

func (ctrl *SubmissionController) loadFiles(c *fiber.Ctx, submissionID uuid.UUID) ([]model.SubmissionFileModel, error) {
	var files []model.SubmissionFileModel
	err := ctrl.DB.WithContext(c.Context()).
		Where("submission_file_submission_id = ?", submissionID).
		Order("submission_file_created_at ASC").
		Find(&files).Error
	return files, err
}
