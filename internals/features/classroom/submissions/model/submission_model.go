package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CHECK: 'submitted','graded','returned'
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
	SubmissionStatusReturned  SubmissionStatus = "returned"
)

type SubmissionModel struct {
	SubmissionID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:submission_id" json:"submission_id"`

	// one live submission per (assignment, student); the partial unique
	// index is what serializes concurrent double submits
	SubmissionAssignmentID uuid.UUID `gorm:"type:uuid;not null;column:submission_assignment_id;uniqueIndex:uq_submissions_assignment_student,where:submission_deleted_at IS NULL" json:"submission_assignment_id"`
	SubmissionStudentID    uuid.UUID `gorm:"type:uuid;not null;index;column:submission_student_id;uniqueIndex:uq_submissions_assignment_student,where:submission_deleted_at IS NULL" json:"submission_student_id"`

	SubmissionStatus SubmissionStatus `gorm:"type:varchar(12);not null;default:'submitted';column:submission_status" json:"submission_status"`

	SubmissionText        *string   `gorm:"type:text;column:submission_text" json:"submission_text,omitempty"`
	SubmissionSubmittedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:submission_submitted_at" json:"submission_submitted_at"`
	SubmissionIsLate      bool      `gorm:"not null;default:false;column:submission_is_late" json:"submission_is_late"`

	SubmissionGrade           *float64          `gorm:"type:numeric(7,2);column:submission_grade" json:"submission_grade,omitempty"`
	SubmissionScoresBreakdown datatypes.JSONMap `gorm:"type:jsonb;column:submission_scores_breakdown" json:"submission_scores_breakdown,omitempty"` // criterion_id -> awarded points
	SubmissionFeedback        *string           `gorm:"type:text;column:submission_feedback" json:"submission_feedback,omitempty"`
	SubmissionGradedBy        *uuid.UUID        `gorm:"type:uuid;column:submission_graded_by" json:"submission_graded_by,omitempty"`
	SubmissionGradedAt        *time.Time        `gorm:"type:timestamptz;column:submission_graded_at" json:"submission_graded_at,omitempty"`
	SubmissionReturnedAt      *time.Time        `gorm:"type:timestamptz;column:submission_returned_at" json:"submission_returned_at,omitempty"`

	SubmissionPlagiarismScore *float64 `gorm:"type:numeric(5,2);column:submission_plagiarism_score" json:"submission_plagiarism_score,omitempty"` // 0..100

	// optimistic lock for concurrent grading; bumped on every grade write
	SubmissionVersion int `gorm:"not null;default:1;column:submission_version" json:"submission_version"`

	SubmissionCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:submission_created_at" json:"submission_created_at"`
	SubmissionUpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:submission_updated_at" json:"submission_updated_at"`
	SubmissionDeletedAt gorm.DeletedAt `gorm:"column:submission_deleted_at;index" json:"submission_deleted_at,omitempty"`
}

func (SubmissionModel) TableName() string { return "submissions" }
