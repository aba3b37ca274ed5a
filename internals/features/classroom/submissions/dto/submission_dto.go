package dto

import (
	"time"

	"github.com/google/uuid"

	model "classku_backend/internals/features/classroom/submissions/model"
)

/* =========================
   Requests
========================= */

// SubmitRequest is parsed from JSON or from multipart form fields; an
// attached file (field "file") is handled separately by the controller.
type SubmitRequest struct {
	AssignmentID   uuid.UUID `json:"assignment_id" form:"assignment_id" validate:"required"`
	SubmissionText *string   `json:"submission_text" form:"submission_text" validate:"omitempty,max=65535"`
}

type GradeRequest struct {
	// criterion id -> awarded points; every rubric criterion must appear
	Scores   map[uuid.UUID]float64 `json:"scores" validate:"required,min=1"`
	Feedback *string               `json:"feedback" validate:"omitempty,max=5000"`
	// version the grader read; stale versions are rejected with Conflict
	Version int `json:"version" validate:"required,min=1"`
}

type PlagiarismRequest struct {
	Score float64 `json:"score" validate:"min=0,max=100"`
}

/* =========================
   Responses
========================= */

type SubmissionFileResponse struct {
	SubmissionFileID          uuid.UUID `json:"submission_file_id"`
	SubmissionFileName        string    `json:"submission_file_name"`
	SubmissionFileURL         string    `json:"submission_file_url"`
	SubmissionFileSizeBytes   int64     `json:"submission_file_size_bytes"`
	SubmissionFileContentType string    `json:"submission_file_content_type"`
}

type SubmissionResponse struct {
	SubmissionID           uuid.UUID              `json:"submission_id"`
	SubmissionAssignmentID uuid.UUID              `json:"submission_assignment_id"`
	SubmissionStudentID    uuid.UUID              `json:"submission_student_id"`
	SubmissionStatus       model.SubmissionStatus `json:"submission_status"`

	SubmissionText        *string   `json:"submission_text,omitempty"`
	SubmissionSubmittedAt time.Time `json:"submission_submitted_at"`
	SubmissionIsLate      bool      `json:"submission_is_late"`

	SubmissionGrade           *float64       `json:"submission_grade,omitempty"`
	SubmissionScoresBreakdown map[string]any `json:"submission_scores_breakdown,omitempty"`
	SubmissionFeedback        *string        `json:"submission_feedback,omitempty"`
	SubmissionGradedBy        *uuid.UUID     `json:"submission_graded_by,omitempty"`
	SubmissionGradedAt        *time.Time     `json:"submission_graded_at,omitempty"`
	SubmissionReturnedAt      *time.Time     `json:"submission_returned_at,omitempty"`
	SubmissionPlagiarismScore *float64       `json:"submission_plagiarism_score,omitempty"`

	SubmissionVersion int `json:"submission_version"`

	Files []SubmissionFileResponse `json:"files,omitempty"`

	SubmissionCreatedAt time.Time `json:"submission_created_at"`
	SubmissionUpdatedAt time.Time `json:"submission_updated_at"`
}

func FromModel(m *model.SubmissionModel, files []model.SubmissionFileModel) SubmissionResponse {
	resp := SubmissionResponse{
		SubmissionID:              m.SubmissionID,
		SubmissionAssignmentID:    m.SubmissionAssignmentID,
		SubmissionStudentID:       m.SubmissionStudentID,
		SubmissionStatus:          m.SubmissionStatus,
		SubmissionText:            m.SubmissionText,
		SubmissionSubmittedAt:     m.SubmissionSubmittedAt,
		SubmissionIsLate:          m.SubmissionIsLate,
		SubmissionGrade:           m.SubmissionGrade,
		SubmissionScoresBreakdown: m.SubmissionScoresBreakdown,
		SubmissionFeedback:        m.SubmissionFeedback,
		SubmissionGradedBy:        m.SubmissionGradedBy,
		SubmissionGradedAt:        m.SubmissionGradedAt,
		SubmissionReturnedAt:      m.SubmissionReturnedAt,
		SubmissionPlagiarismScore: m.SubmissionPlagiarismScore,
		SubmissionVersion:         m.SubmissionVersion,
		SubmissionCreatedAt:       m.SubmissionCreatedAt,
		SubmissionUpdatedAt:       m.SubmissionUpdatedAt,
	}
	for _, f := range files {
		resp.Files = append(resp.Files, SubmissionFileResponse{
			SubmissionFileID:          f.SubmissionFileID,
			SubmissionFileName:        f.SubmissionFileName,
			SubmissionFileURL:         f.SubmissionFileURL,
			SubmissionFileSizeBytes:   f.SubmissionFileSizeBytes,
			SubmissionFileContentType: f.SubmissionFileContentType,
		})
	}
	return resp
}
