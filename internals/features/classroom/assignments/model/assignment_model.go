package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CHECK: 'text','file','both'
type SubmissionType string

const (
	SubmissionTypeText SubmissionType = "text"
	SubmissionTypeFile SubmissionType = "file"
	SubmissionTypeBoth SubmissionType = "both"
)

type AssignmentModel struct {
	AssignmentID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:assignment_id" json:"assignment_id"`
	AssignmentCourseID uuid.UUID `gorm:"type:uuid;not null;index;column:assignment_course_id" json:"assignment_course_id"`

	AssignmentTitle       string  `gorm:"type:varchar(150);not null;column:assignment_title" json:"assignment_title"`
	AssignmentDescription *string `gorm:"type:text;column:assignment_description" json:"assignment_description,omitempty"`

	AssignmentDueDate time.Time `gorm:"type:timestamptz;not null;column:assignment_due_date" json:"assignment_due_date"`

	// always derived from the rubric, never client-set
	AssignmentTotalPoints float64 `gorm:"type:numeric(7,2);not null;default:0;column:assignment_total_points" json:"assignment_total_points"`

	AssignmentSubmissionType    SubmissionType `gorm:"type:varchar(8);not null;default:'text';column:assignment_submission_type" json:"assignment_submission_type"`
	AssignmentAllowedExtensions datatypes.JSON `gorm:"type:jsonb;column:assignment_allowed_extensions" json:"assignment_allowed_extensions,omitempty"` // []string, e.g. [".pdf",".docx"]
	AssignmentMaxFileSizeBytes  int64          `gorm:"not null;default:10485760;column:assignment_max_file_size_bytes" json:"assignment_max_file_size_bytes"`

	AssignmentAllowResubmission bool `gorm:"not null;default:false;column:assignment_allow_resubmission" json:"assignment_allow_resubmission"`

	AssignmentIsPublished bool       `gorm:"not null;default:false;column:assignment_is_published" json:"assignment_is_published"`
	AssignmentPublishedAt *time.Time `gorm:"type:timestamptz;column:assignment_published_at" json:"assignment_published_at,omitempty"`

	AssignmentCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:assignment_created_at" json:"assignment_created_at"`
	AssignmentUpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:assignment_updated_at" json:"assignment_updated_at"`
	AssignmentDeletedAt gorm.DeletedAt `gorm:"column:assignment_deleted_at;index" json:"assignment_deleted_at,omitempty"`
}

func (AssignmentModel) TableName() string { return "assignments" }
